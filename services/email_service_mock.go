package services

import "sync"

// MockEmailService is a mock implementation of EmailService for testing
type MockEmailService struct {
	mu             sync.Mutex
	DocsEmails     []DocsEmailParams
	ZipEmails      []string // brand names
	FailDeliveries bool
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

// SetAsMockForTesting sets this mock as the global email service instance
func (m *MockEmailService) SetAsMockForTesting() {
	SetEmailService(m)
}

// SendDocsSubmitted records the notification
func (m *MockEmailService) SendDocsSubmitted(params DocsEmailParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeliveries {
		return errMockDelivery
	}
	m.DocsEmails = append(m.DocsEmails, params)
	return nil
}

// SendZipDownloaded records the notification
func (m *MockEmailService) SendZipDownloaded(brandName string, itemCount int, submissionID, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeliveries {
		return errMockDelivery
	}
	m.ZipEmails = append(m.ZipEmails, brandName)
	return nil
}

// DocsEmailCount returns how many docs notifications were recorded
func (m *MockEmailService) DocsEmailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DocsEmails)
}

// ZipEmailCount returns how many zip notifications were recorded
func (m *MockEmailService) ZipEmailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ZipEmails)
}

type mockDeliveryError struct{}

func (mockDeliveryError) Error() string { return "mock delivery failure" }

var errMockDelivery = mockDeliveryError{}
