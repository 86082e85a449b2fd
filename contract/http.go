package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type SetAdminRoleRequest struct {
	Email string `json:"email"`
}

type SetAdminRoleResponse struct {
	Message string `json:"message"`
}

type GetOrCreateChatRequest struct {
	OtherUserID string `json:"otherUserId"`
}

type GetOrCreateChatResponse struct {
	ChatID string `json:"chatId"`
}

type StripeAccountLinkResponse struct {
	URL string `json:"url"`
}

type PreferenceRequest struct {
	Title      string `json:"title"`
	UnitPrice  Price  `json:"unitPrice"`
	PayerEmail string `json:"payerEmail"`
}

type PreferenceResponse struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"initPoint"`
}

// Price accepts both a JSON number and a numeric string.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("unitPrice is not a number: %q", s)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("unitPrice is not a number: %s", data)
	}
	*p = Price(f)
	return nil
}
