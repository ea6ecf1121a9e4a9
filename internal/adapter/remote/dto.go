package remote

import (
	"bytes"
	"encoding/json"
)

// flexID accepts both numeric and string ids
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// Identity API

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

type loginResponse struct {
	ID           flexID `json:"id"`
	Username     string `json:"username"`
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"` // Older API versions
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken  string `json:"refreshToken"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID       flexID `json:"id"`
	Username string `json:"username"`
}

// Catalog API

type productsResponse struct {
	Products []productDTO `json:"products"`
	Total    int          `json:"total"`
	Skip     int          `json:"skip"`
	Limit    int          `json:"limit"`
}

type productDTO struct {
	ID          flexID   `json:"id"`
	Title       string   `json:"title"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Brand       string   `json:"brand"`
	SKU         string   `json:"sku"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
}
