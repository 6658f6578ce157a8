package utils

import (
	"math/rand"
	"testing"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinnedCollector() *Collector {
	return NewCollector(rand.New(rand.NewSource(42)))
}

func TestCollectSocialMedia(t *testing.T) {
	cl := pinnedCollector()
	source := &models.DataSource{
		Name: "LinkedIn Outreach",
		Type: models.SourceSocialMedia,
		Configuration: &models.SourceConfiguration{
			APIKey:  "test-key",
			BaseURL: "https://api.example.com",
		},
	}

	prospects, err := cl.Collect(source)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(prospects), 1)
	assert.LessOrEqual(t, len(prospects), 5)
	for _, p := range prospects {
		assert.GreaterOrEqual(t, p.Age, 50)
		assert.LessOrEqual(t, p.Age, 75)
		assert.NotEmpty(t, p.Email)
		assert.Equal(t, "LinkedIn Outreach", p.Source)
		assert.Zero(t, p.Score, "collected prospects arrive unscored")
		if p.MaritalStatus == models.MaritalMarried {
			assert.NotNil(t, p.SpouseInfo)
		} else {
			assert.Nil(t, p.SpouseInfo)
		}
		if p.ExitInterest {
			assert.True(t, p.TimeshareOwner, "exit interest implies ownership")
		}
		if p.TimeshareOwner {
			assert.NotEmpty(t, p.TimeshareCompany)
		}
	}
}

func TestCollectWebScraping(t *testing.T) {
	cl := pinnedCollector()
	source := &models.DataSource{
		Name: "Resort Directory Scraper",
		Type: models.SourceWebScraping,
		Configuration: &models.SourceConfiguration{
			TargetURL: "https://directory.example.com",
		},
	}

	prospects, err := cl.Collect(source)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(prospects), 1)
	assert.LessOrEqual(t, len(prospects), 3)
}

func TestCollectMissingConfiguration(t *testing.T) {
	cl := pinnedCollector()

	_, err := cl.Collect(&models.DataSource{
		Name: "Unconfigured API",
		Type: models.SourceSocialMedia,
	})
	assert.Error(t, err)

	_, err = cl.Collect(&models.DataSource{
		Name:          "API Without Key",
		Type:          models.SourceSocialMedia,
		Configuration: &models.SourceConfiguration{BaseURL: "https://api.example.com"},
	})
	assert.Error(t, err)

	_, err = cl.Collect(&models.DataSource{
		Name:          "Scraper Without Target",
		Type:          models.SourceWebScraping,
		Configuration: &models.SourceConfiguration{},
	})
	assert.Error(t, err)
}

func TestCollectUnsupportedType(t *testing.T) {
	cl := pinnedCollector()

	_, err := cl.Collect(&models.DataSource{Name: "Spreadsheet", Type: models.SourceManualImport})

	var unsupported *ErrUnsupportedSourceType
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, models.SourceManualImport, unsupported.Type)
}

func TestCollectWebScrapingExitShare(t *testing.T) {
	cl := pinnedCollector()
	source := &models.DataSource{
		Name: "Resort Directory Scraper",
		Type: models.SourceWebScraping,
		Configuration: &models.SourceConfiguration{
			TargetURL: "https://directory.example.com",
		},
	}

	// Most scraped owners are looking for a way out; the exit share among
	// owners sits around 70%
	owners, exiters := 0, 0
	for i := 0; i < 5000; i++ {
		prospects, err := cl.Collect(source)
		require.NoError(t, err)
		for _, p := range prospects {
			if p.TimeshareOwner {
				owners++
				if p.ExitInterest {
					exiters++
				}
			}
		}
	}

	require.Greater(t, owners, 1000)
	share := float64(exiters) / float64(owners)
	assert.InDelta(t, 0.7, share, 0.05)
}

func TestCollectUniqueEmails(t *testing.T) {
	cl := pinnedCollector()
	source := &models.DataSource{
		Name: "LinkedIn Outreach",
		Type: models.SourceSocialMedia,
		Configuration: &models.SourceConfiguration{
			APIKey:  "test-key",
			BaseURL: "https://api.example.com",
		},
	}

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		prospects, err := cl.Collect(source)
		require.NoError(t, err)
		for _, p := range prospects {
			assert.False(t, seen[p.Email], "duplicate email %s", p.Email)
			seen[p.Email] = true
		}
	}
}
