package utils

import (
	"fmt"
	"math/rand"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/google/uuid"
)

// Collector fabricates prospect records for a data source run. Real
// connectors would call the configured API or scrape the target URL; the
// demographic distributions here match what those connectors return in the
// field. The random source is injectable so tests can pin it.
type Collector struct {
	rng *rand.Rand
}

func NewCollector(rng *rand.Rand) *Collector {
	return &Collector{rng: rng}
}

var (
	sampleLocations    = []string{"Florida", "Arizona", "California", "Texas", "New York"}
	sampleCompanies    = []string{"Wyndham", "Hilton", "Marriott", "Diamond Resorts"}
	sampleDestinations = []string{"Europe", "Caribbean", "Asia", "South America"}
)

// ErrUnsupportedSourceType is returned for source types that have no connector
type ErrUnsupportedSourceType struct {
	Type string
}

func (e *ErrUnsupportedSourceType) Error() string {
	return fmt.Sprintf("unsupported data source type: %s", e.Type)
}

// Collect runs one collection pass for the source and returns the new
// prospects, unscored and unsaved. Callers score and persist them.
func (cl *Collector) Collect(source *models.DataSource) ([]models.Prospect, error) {
	switch source.Type {
	case models.SourceSocialMedia:
		return cl.collectFromSocialMedia(source)
	case models.SourceWebScraping:
		return cl.collectFromWebScraping(source)
	default:
		return nil, &ErrUnsupportedSourceType{Type: source.Type}
	}
}

func (cl *Collector) collectFromSocialMedia(source *models.DataSource) ([]models.Prospect, error) {
	if source.Configuration == nil || source.Configuration.APIKey == "" || source.Configuration.BaseURL == "" {
		return nil, fmt.Errorf("missing required configuration for social media API")
	}

	count := cl.rng.Intn(5) + 1 // 1-5 records per run
	prospects := make([]models.Prospect, 0, count)
	for i := 0; i < count; i++ {
		// 70% married, 60% high income, 40% owners, half of owners want out
		p := cl.sampleProspect(source.Name, 0.3, 0.4, 0.6, 0.5)
		prospects = append(prospects, p)
	}
	return prospects, nil
}

func (cl *Collector) collectFromWebScraping(source *models.DataSource) ([]models.Prospect, error) {
	if source.Configuration == nil || source.Configuration.TargetURL == "" {
		return nil, fmt.Errorf("missing required configuration for web scraping")
	}

	count := cl.rng.Intn(3) + 1 // 1-3 records per run
	prospects := make([]models.Prospect, 0, count)
	for i := 0; i < count; i++ {
		// 70% married, 60% high income, 60% owners, 70% of owners want out
		p := cl.sampleProspect(source.Name, 0.3, 0.4, 0.4, 0.3)
		prospects = append(prospects, p)
	}
	return prospects, nil
}

func (cl *Collector) sampleProspect(sourceName string, singleP, lowIncomeP, nonOwnerP, keepP float64) models.Prospect {
	age := cl.rng.Intn(26) + 50 // 50-75
	isMarried := cl.rng.Float64() > singleP
	hasHighIncome := cl.rng.Float64() > lowIncomeP
	isOwner := cl.rng.Float64() > nonOwnerP
	wantsToExit := isOwner && cl.rng.Float64() > keepP

	maritalStatus := models.MaritalSingle
	var spouse *models.SpouseInfo
	if isMarried {
		maritalStatus = models.MaritalMarried
		spouse = &models.SpouseInfo{
			Name: "Spouse Name",
			Age:  age - cl.rng.Intn(5),
		}
	}

	income := "$75,000-$100,000"
	if hasHighIncome {
		income = "$150,000+"
	}

	travelInterest := models.TravelMedium
	if cl.rng.Float64() > 0.5 {
		travelInterest = models.TravelHigh
	}

	travelFrequency := "Occasional"
	if cl.rng.Float64() > 0.5 {
		travelFrequency = "Frequent"
	}

	company := ""
	if isOwner {
		company = sampleCompanies[cl.rng.Intn(len(sampleCompanies))]
	}

	id := uuid.New().String()[:8]
	return models.Prospect{
		Name:             fmt.Sprintf("Sample %s User %s", sourceName, id),
		Email:            fmt.Sprintf("sample-%s@example.com", id),
		Phone:            fmt.Sprintf("555-%03d-%04d", cl.rng.Intn(900)+100, cl.rng.Intn(9000)+1000),
		Age:              age,
		MaritalStatus:    maritalStatus,
		SpouseInfo:       spouse,
		Income:           income,
		Location:         sampleLocations[cl.rng.Intn(len(sampleLocations))],
		TravelInterest:   travelInterest,
		TravelFrequency:  travelFrequency,
		Destinations:     sampleDestinations[:cl.rng.Intn(len(sampleDestinations))+1],
		TimeshareOwner:   isOwner,
		TimeshareCompany: company,
		ExitInterest:     wantsToExit,
		Source:           sourceName,
	}
}
