package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"golang.org/x/text/unicode/norm"
)

// Field names used in extraction ambiguities
const (
	FieldItemDescription = "item_description"
	FieldDestination     = "destination"
	FieldEndUser         = "end_user"
	FieldEndUse          = "end_use"
	FieldContractValue   = "contract_value"
	FieldDeliveryDate    = "delivery_date"
)

type extractionRule struct {
	field   string
	pattern *regexp.Regexp
	set     func(f *model.ExtractedFields, v string)
}

// labelRule builds a line-anchored rule: an optional bullet, one of the labels,
// a colon and the rest of the line as value
func labelRule(field string, set func(*model.ExtractedFields, string), labels ...string) extractionRule {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	expr := `(?im)^[ \t]*(?:[-*•・][ \t]*)?(?:` + strings.Join(quoted, "|") + `)[ \t]*[:：][ \t]*(.+?)[ \t]*$`
	return extractionRule{field: field, pattern: regexp.MustCompile(expr), set: set}
}

// extractionRules are evaluated in order; the first rule that matches a field wins
var extractionRules = []extractionRule{
	labelRule(FieldItemDescription, func(f *model.ExtractedFields, v string) { f.ItemDescription = v },
		"item description", "product description", "product name", "product", "item", "goods", "commodity"),
	labelRule(FieldItemDescription, func(f *model.ExtractedFields, v string) { f.ItemDescription = v },
		"品目", "製品", "商品", "貨物", "品名"),

	labelRule(FieldDestination, func(f *model.ExtractedFields, v string) { f.Destination = v },
		"destination country", "country of destination", "ship to country", "destination"),
	labelRule(FieldDestination, func(f *model.ExtractedFields, v string) { f.Destination = v },
		"仕向地", "仕向国", "輸出先", "輸出国", "出荷先国"),

	labelRule(FieldEndUser, func(f *model.ExtractedFields, v string) { f.EndUser = v },
		"end user", "end-user", "ultimate consignee", "consignee", "customer"),
	labelRule(FieldEndUser, func(f *model.ExtractedFields, v string) { f.EndUser = v },
		"最終需要者", "需要者", "エンドユーザー", "エンドユーザ", "顧客"),

	labelRule(FieldEndUse, func(f *model.ExtractedFields, v string) { f.EndUse = v },
		"end use", "end-use", "intended use", "purpose"),
	labelRule(FieldEndUse, func(f *model.ExtractedFields, v string) { f.EndUse = v },
		"用途", "使用目的", "利用目的"),

	labelRule(FieldContractValue, func(f *model.ExtractedFields, v string) { f.ContractValue = v },
		"contract value", "contract amount", "total amount", "amount", "value", "price"),
	labelRule(FieldContractValue, func(f *model.ExtractedFields, v string) { f.ContractValue = v },
		"契約金額", "金額", "価格", "総額"),

	labelRule(FieldDeliveryDate, func(f *model.ExtractedFields, v string) { f.DeliveryDate = v },
		"delivery date", "delivery", "ship date"),
	labelRule(FieldDeliveryDate, func(f *model.ExtractedFields, v string) { f.DeliveryDate = v },
		"納期", "納入日", "出荷日"),
}

// placeholders are values that fill a label without carrying information
var placeholders = map[string]struct{}{
	"": {}, "-": {}, "--": {}, "n/a": {}, "na": {}, "none": {}, "tbd": {}, "unknown": {},
	"未定": {}, "不明": {}, "なし": {},
}

// Extraction is the output of the field extractor
type Extraction struct {
	Fields model.ExtractedFields
	// Ambiguities describe labels that were present but unusable or conflicting.
	// They never block the pipeline.
	Ambiguities []string
}

// ExtractFields pulls transaction fields out of free text. It never fails;
// fields that are not found stay empty.
func ExtractFields(text string) Extraction {
	text = norm.NFKC.String(text)

	var out Extraction
	found := make(map[string]string)
	for _, rule := range extractionRules {
		for _, m := range rule.pattern.FindAllStringSubmatch(text, -1) {
			v := strings.TrimSpace(m[1])
			if _, ok := placeholders[strings.ToLower(v)]; ok {
				if _, done := found[rule.field]; !done {
					out.Ambiguities = appendUnique(out.Ambiguities, rule.field+" is present but has no usable value")
				}
				continue
			}

			first, done := found[rule.field]
			if !done {
				found[rule.field] = v
				rule.set(&out.Fields, v)
				continue
			}
			if !strings.EqualFold(first, v) {
				out.Ambiguities = appendUnique(out.Ambiguities, rule.field+" has conflicting values; the first one is used")
			}
		}
	}

	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

var (
	amountPattern = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)\s*(万|億|千|million|thousand|billion|[mkb]\b)?`)

	currencyMarkers = []struct {
		currency string
		markers  []string
	}{
		{"USD", []string{"us$", "usd", "$", "ドル"}},
		{"EUR", []string{"eur", "€", "ユーロ"}},
		{"GBP", []string{"gbp", "£"}},
		{"JPY", []string{"jpy", "¥", "円"}},
	}

	multipliers = map[string]float64{
		"千": 1e3, "万": 1e4, "億": 1e8,
		"thousand": 1e3, "k": 1e3,
		"million": 1e6, "m": 1e6,
		"billion": 1e9, "b": 1e9,
	}
)

// ParseContractValue converts a contract value such as "$10,000" or "1,200万円" into
// an amount and a currency code. Currency is empty when no marker is found.
func ParseContractValue(s string) (*model.ContractValue, bool) {
	s = strings.ToLower(norm.NFKC.String(s))
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil, false
	}
	if mul, ok := multipliers[m[2]]; ok {
		amount *= mul
	}

	value := &model.ContractValue{Amount: amount}
	for _, c := range currencyMarkers {
		for _, marker := range c.markers {
			if strings.Contains(s, marker) {
				value.Currency = c.currency
				return value, true
			}
		}
	}
	return value, true
}
