package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/menuportal/onboarding-api/config"
)

// DocsEmailParams carries everything the documents-submitted notification
// needs to render its body.
type DocsEmailParams struct {
	BrandName             string
	BusinessType          string
	ContactEmail          string
	ContactPhone          string
	Categories            []string
	CategoriesDescription string
	DocsList              []string
	DocsToken             string
}

// EmailService sends the portal's outbound notifications. Delivery is
// always best-effort: callers fire these from goroutines and never let a
// failure affect the triggering request.
type EmailService interface {
	// SendDocsSubmitted notifies the operations inbox that a merchant
	// completed the documents sub-flow, including the capability link
	SendDocsSubmitted(params DocsEmailParams) error

	// SendZipDownloaded notifies that a menu package was downloaded for
	// the first time
	SendZipDownloaded(brandName string, itemCount int, submissionID, accessToken string) error
}

var emailServiceInstance EmailService

// InitEmailService wires the Resend-backed sender when credentials are
// configured and a logging no-op otherwise, so an unconfigured deployment
// keeps working without notifications.
func InitEmailService(cfg *config.Config) EmailService {
	if cfg.ResendAPIKey == "" || cfg.NotifyEmailTo == "" {
		log.Printf("[Email] RESEND_API_KEY or NOTIFY_EMAIL_TO not configured, notifications disabled")
		emailServiceInstance = &NoopEmailService{}
		return emailServiceInstance
	}

	emailServiceInstance = &ResendEmailService{
		client:     resend.NewClient(cfg.ResendAPIKey),
		to:         cfg.NotifyEmailTo,
		appBaseURL: cfg.AppBaseURL,
	}
	return emailServiceInstance
}

// GetEmailService returns the initialized email service instance
func GetEmailService() EmailService {
	return emailServiceInstance
}

// SetEmailService sets the email service instance (primarily for testing)
func SetEmailService(service EmailService) {
	emailServiceInstance = service
}

// ResendEmailService implements EmailService using the Resend API
type ResendEmailService struct {
	client     *resend.Client
	to         string
	appBaseURL string
}

const emailFrom = "Menu Portal <onboarding@resend.dev>"

// SendDocsSubmitted sends the documents-uploaded notification
func (s *ResendEmailService) SendDocsSubmitted(params DocsEmailParams) error {
	log.Printf("[Email] Sending docs upload email for %s to %s", params.BrandName, s.to)

	downloadLink := fmt.Sprintf("%s/dl/docs/%s", s.appBaseURL, params.DocsToken)

	var categories strings.Builder
	for _, cat := range params.Categories {
		fmt.Fprintf(&categories, "- %s\n", cat)
	}
	var docs strings.Builder
	for _, doc := range params.DocsList {
		fmt.Fprintf(&docs, "- %s\n", doc)
	}
	descTxt := ""
	if params.CategoriesDescription != "" {
		descTxt = fmt.Sprintf("\nCategory description provided:\n%s\n", params.CategoriesDescription)
	}

	body := fmt.Sprintf(`New Documents Upload Notification!

Brand Name: %s
Merchant Type: %s
Official Email: %s
Official Phone: %s

Listed Products / Categories:
%s%s
Uploaded Documents:
%s
Timestamp: %s

Download Documents ZIP Secure Link:
%s

Note: This link will securely expire according to the retention policy.`,
		params.BrandName, params.BusinessType, params.ContactEmail, params.ContactPhone,
		categories.String(), descTxt, docs.String(),
		time.Now().Format("02/01/2006, 15:04:05"), downloadLink)

	sent, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    emailFrom,
		To:      []string{s.to},
		Subject: fmt.Sprintf("[Menu Portal] Documents uploaded – %s", params.BrandName),
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("resend API error: %w", err)
	}
	log.Printf("[Email] Docs upload email sent for %s. Resend ID: %s", params.BrandName, sent.Id)
	return nil
}

// SendZipDownloaded sends the first-download notification
func (s *ResendEmailService) SendZipDownloaded(brandName string, itemCount int, submissionID, accessToken string) error {
	log.Printf("[Email] Sending ZIP download email for %s to %s", brandName, s.to)

	downloadLink := fmt.Sprintf("%s/download/%s/package.zip?accessToken=%s", s.appBaseURL, submissionID, accessToken)

	body := fmt.Sprintf(`Menu ZIP Downloaded!

Brand Name: %s
Menu Items: %d
Downloaded At: %s

Download Menu ZIP Secure Link:
%s

Note: This link will expire according to the retention policy.`,
		brandName, itemCount, time.Now().Format("02/01/2006, 15:04:05"), downloadLink)

	sent, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    emailFrom,
		To:      []string{s.to},
		Subject: fmt.Sprintf("[Menu Portal] ZIP Downloaded – %s", brandName),
		Text:    body,
	})
	if err != nil {
		return fmt.Errorf("resend API error: %w", err)
	}
	log.Printf("[Email] ZIP download email sent for %s. Resend ID: %s", brandName, sent.Id)
	return nil
}

// NoopEmailService is used when email credentials are not configured
type NoopEmailService struct{}

// SendDocsSubmitted logs and drops the notification
func (s *NoopEmailService) SendDocsSubmitted(params DocsEmailParams) error {
	log.Printf("[Email] Skipped docs upload email for %s (notifications disabled)", params.BrandName)
	return nil
}

// SendZipDownloaded logs and drops the notification
func (s *NoopEmailService) SendZipDownloaded(brandName string, itemCount int, submissionID, accessToken string) error {
	log.Printf("[Email] Skipped ZIP download email for %s (notifications disabled)", brandName)
	return nil
}
