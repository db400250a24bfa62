// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	d := dto.AuthUserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		AccountID: user.AccountID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.Account != nil {
		d.AccountName = &user.Account.Name
	}
	return d
}

func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	return dto.SessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

func ToAccessRequestDTO(request models.AccessRequest) dto.AccessRequestDTO {
	d := dto.AccessRequestDTO{
		ID:             request.ID,
		RequesterEmail: request.RequesterEmail,
		RequesterName:  request.RequesterName,
		Status:         request.Status,
		Source:         request.Source,
		AccessCode:     request.AccessCode,
		Notes:          request.Notes,
		RequestDate:    request.RequestDate.Format(time.RFC3339),
	}
	if request.ApprovalDate != nil {
		s := request.ApprovalDate.Format(time.RFC3339)
		d.ApprovalDate = &s
	}
	if request.RegistrationDate != nil {
		s := request.RegistrationDate.Format(time.RFC3339)
		d.RegistrationDate = &s
	}
	return d
}

func ToPropertyDTO(property models.Property, itemCount int64) dto.PropertyDTO {
	return dto.PropertyDTO{
		ID:           property.ID,
		UUID:         property.UUID.String(),
		Name:         property.Name,
		Nickname:     property.Nickname,
		Address:      property.Address,
		PropertyType: property.PropertyType,
		ItemCount:    itemCount,
		CreatedAt:    property.CreatedAt.Format(time.RFC3339),
	}
}

func ToItemDTO(item models.Item) dto.ItemDTO {
	d := dto.ItemDTO{
		ID:           item.ID,
		PublicID:     item.PublicID.String(),
		PropertyID:   item.PropertyID,
		Name:         item.Name,
		Description:  item.Description,
		QRCodeURL:    item.QRCodeURL,
		DisplayOrder: item.DisplayOrder,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
	}
	for _, link := range item.ResourceLinks {
		d.ResourceLinks = append(d.ResourceLinks, ToResourceLinkDTO(link))
	}
	return d
}

func ToResourceLinkDTO(link models.ItemResourceLink) dto.ResourceLinkDTO {
	return dto.ResourceLinkDTO{
		ID:           link.ID,
		LinkType:     link.LinkType,
		Title:        link.Title,
		URL:          link.URL,
		ThumbnailURL: link.ThumbnailURL,
		DisplayOrder: link.DisplayOrder,
	}
}

func ToSubscriberDTO(subscriber models.MailingListSubscriber) dto.SubscriberDTO {
	d := dto.SubscriberDTO{
		ID:           subscriber.ID,
		Email:        subscriber.Email,
		Source:       subscriber.Source,
		SubscribedAt: subscriber.SubscribedAt.Format(time.RFC3339),
	}
	if subscriber.UnsubscribedAt != nil {
		s := subscriber.UnsubscribedAt.Format(time.RFC3339)
		d.UnsubscribedAt = &s
	}
	return d
}
