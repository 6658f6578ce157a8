package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/andyfree1/client-finder-backend/config"
	"github.com/andyfree1/client-finder-backend/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Notifier sends internal notification email to admin users. All sends are
// fire-and-forget: failures are logged, never propagated to the request that
// caused them.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

// Embedded notification templates
var notificationTemplates = map[string]string{
	"qualified_lead": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .score { font-size: 24px; font-weight: bold; color: #27ae60; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; }
    </style>
</head>
<body>
    <div class="header"><h2>New Qualified Lead</h2></div>
    <p>A new prospect has been identified as a qualified lead with a score of <span class="score">{{.Score}}</span>.</p>
    <ul>
        <li><strong>Name:</strong> {{.Name}}</li>
        <li><strong>Age:</strong> {{.Age}}</li>
        <li><strong>Location:</strong> {{.Location}}</li>
        <li><strong>Marital Status:</strong> {{.MaritalStatus}}</li>
        <li><strong>Income:</strong> {{.Income}}</li>
        <li><strong>Travel Interest:</strong> {{.TravelInterest}}</li>
        <li><strong>Source:</strong> {{.Source}}</li>
    </ul>
    <div class="footer"><p>This is an automated notification from the Client Finder system.</p></div>
</body>
</html>`,

	"campaign_completed": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; }
    </style>
</head>
<body>
    <div class="header"><h2>Campaign Completed: {{.Name}}</h2></div>
    <ul>
        <li><strong>Total Prospects:</strong> {{.TotalProspects}}</li>
        <li><strong>Delivered:</strong> {{.Delivered}}</li>
        <li><strong>Opened:</strong> {{.Opened}}</li>
        <li><strong>Clicked:</strong> {{.Clicked}}</li>
        <li><strong>Responded:</strong> {{.Responded}}</li>
        <li><strong>Converted:</strong> {{.Converted}}</li>
    </ul>
    <div class="footer"><p>This is an automated notification from the Client Finder system.</p></div>
</body>
</html>`,

	"collection_completed": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; }
    </style>
</head>
<body>
    <div class="header"><h2>Data Collection Completed</h2></div>
    <p>Data source <strong>{{.Name}}</strong> finished a run at {{.RanAt}}.</p>
    <ul>
        <li><strong>Records Collected:</strong> {{.RecordsCollected}}</li>
        <li><strong>Total Records:</strong> {{.TotalRecords}}</li>
        <li><strong>Success Rate:</strong> {{printf "%.1f" .SuccessRate}}%</li>
    </ul>
    <div class="footer"><p>This is an automated notification from the Client Finder system.</p></div>
</body>
</html>`,
}

// NotifyQualifiedLead alerts admins that a prospect crossed the qualified
// threshold
func (n *Notifier) NotifyQualifiedLead(prospect *models.Prospect) error {
	body, err := renderTemplate("qualified_lead", prospect)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New Qualified Lead: %s", prospect.Name)
	return n.sendToAdmins(subject, body)
}

// NotifyCampaignCompleted alerts admins that a campaign finished delivery
func (n *Notifier) NotifyCampaignCompleted(campaign *models.Campaign) error {
	body, err := renderTemplate("campaign_completed", campaign)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Campaign Completed: %s", campaign.Name)
	return n.sendToAdmins(subject, body)
}

// NotifyDataCollectionComplete alerts admins that a source run finished
func (n *Notifier) NotifyDataCollectionComplete(source *models.DataSource, recordsCollected int) error {
	data := struct {
		Name             string
		RanAt            string
		RecordsCollected int
		TotalRecords     int
		SuccessRate      float64
	}{
		Name:             source.Name,
		RanAt:            time.Now().Format(time.RFC1123),
		RecordsCollected: recordsCollected,
		TotalRecords:     source.TotalRecordsCollected,
		SuccessRate:      source.SuccessRate,
	}
	body, err := renderTemplate("collection_completed", data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Data Collection Completed: %s", source.Name)
	return n.sendToAdmins(subject, body)
}

func renderTemplate(name string, data interface{}) (string, error) {
	tmpl, ok := notificationTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown notification template: %s", name)
	}
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *Notifier) sendToAdmins(subject, htmlBody string) error {
	var admins []models.User
	if err := n.DB.Where("role = ? AND is_active = ?", "admin", true).Find(&admins).Error; err != nil {
		return err
	}
	if len(admins) == 0 {
		logrus.Warn("no admin users found to notify")
		return nil
	}

	recipients := make([]string, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, admin.Email)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	port := 587
	if config.AppConfig.SMTPPort != "" {
		fmt.Sscanf(config.AppConfig.SMTPPort, "%d", &port)
	}
	d := gomail.NewDialer(config.AppConfig.SMTPHost, port, config.AppConfig.SMTPUsername, config.AppConfig.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
