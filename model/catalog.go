package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogPayload is the body of the services-for-booking endpoint.
type CatalogPayload struct {
	Categories       map[string][]string `json:"categories"`
	ServiceDurations map[string]Minutes  `json:"serviceDurations"`
	ServicePrices    map[string]Price    `json:"servicePrices"`
}

// Minutes decodes durations sent as "45 minutes", "45" or 45.
// Anything unparseable decodes to zero.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	} else {
		text = string(data)
	}
	*m = Minutes(parseLeadingInt(text))
	return nil
}

func (m Minutes) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(m)) + " minutes")
}

// Price decodes prices sent either as strings or numbers.
// Blank or malformed values decode to zero.
type Price struct {
	decimal.Decimal
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	text := strings.Trim(string(data), `"`)
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		p.Decimal = decimal.Zero
		return nil
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		p.Decimal = decimal.Zero
		return nil
	}
	p.Decimal = value
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Decimal.StringFixed(2))
}

func parseLeadingInt(text string) int {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0
	}
	return value
}
