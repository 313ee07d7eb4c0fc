package catalog

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

var registryHeaders = map[string][]string{
	"name":            {"name", "entity", "company", "企業・機関名", "企業名"},
	"country":         {"country", "国", "国名"},
	"listing_reason":  {"listing_reason", "reason", "掲載理由"},
	"regulation_text": {"regulation_text", "regulation", "規制内容"},
	"listing_date":    {"listing_date", "date", "掲載日"},
}

// ParseRegistry reads the restricted-party registry CSV. English and Japanese headers
// are accepted; only the name column is mandatory.
func ParseRegistry(r io.Reader) (*model.RestrictedPartyRegistry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, loadError(err, "failed to read registry header")
	}

	index := mapHeader(header)
	if _, ok := index["name"]; !ok {
		return nil, goerr.Wrap(model.ErrCatalogLoad, "registry has no name column", goerr.V("header", header))
	}

	registry := &model.RestrictedPartyRegistry{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, loadError(err, "failed to read registry row",
				goerr.V(model.LineKey, line))
		}

		get := func(key string) string {
			i, ok := index[key]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("name")
		if name == "" {
			continue
		}
		registry.Records = append(registry.Records, &model.RestrictedPartyRecord{
			Name:           name,
			Country:        get("country"),
			ListingReason:  get("listing_reason"),
			RegulationText: get("regulation_text"),
			ListingDate:    get("listing_date"),
		})
	}

	return registry, nil
}

func mapHeader(header []string) map[string]int {
	index := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for key, aliases := range registryHeaders {
			if _, done := index[key]; done {
				continue
			}
			for _, alias := range aliases {
				if h == alias {
					index[key] = i
				}
			}
		}
	}
	return index
}
