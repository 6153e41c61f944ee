package predict

import (
	"errors"
	"strings"

	"sentidash/internal/platform"
	"sentidash/internal/result"

	"github.com/tidwall/gjson"
)

// Service field names.
const (
	fieldLogReg   = "logreg"
	fieldBayes    = "bayes"
	fieldBERT     = "bert"
	fieldCombined = "combined"
)

var errNotObject = errors.New("response body is not a JSON object")

func parseObject(raw []byte) (gjson.Result, error) {
	body := strings.TrimSpace(string(raw))
	if body == "" || !gjson.Valid(body) {
		return gjson.Result{}, errNotObject
	}
	parsed := gjson.Parse(body)
	if !parsed.IsObject() {
		return gjson.Result{}, errNotObject
	}
	return parsed, nil
}

// label reads a scalar label. Strings and numbers are accepted; anything else
// degrades to "" and is recorded as missing under prefix+field.
func label(node gjson.Result, prefix, field string, missing *[]string) string {
	v := node.Get(field)
	switch v.Type {
	case gjson.String, gjson.Number:
		return v.String()
	default:
		*missing = append(*missing, prefix+field)
		return ""
	}
}

// readPlatformResult reads the three model labels; withCombined also reads
// (and reports) the combined label.
func readPlatformResult(node gjson.Result, prefix string, withCombined bool, missing *[]string) result.PlatformResult {
	r := result.PlatformResult{
		LogisticRegression: label(node, prefix, fieldLogReg, missing),
		NaiveBayes:         label(node, prefix, fieldBayes, missing),
		Transformer:        label(node, prefix, fieldBERT, missing),
	}
	if withCombined {
		r.Combined = label(node, prefix, fieldCombined, missing)
	} else if c := node.Get(fieldCombined); c.Type == gjson.String || c.Type == gjson.Number {
		r.Combined = c.String()
	}
	return r
}

func parseSingle(raw []byte) (SingleResponse, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return SingleResponse{}, err
	}
	var missing []string
	return SingleResponse{Result: readPlatformResult(obj, "", true, &missing), Missing: missing}, nil
}

// parseBundle always yields all four platforms. An absent or non-object
// platform entry becomes an all-empty result.
func parseBundle(raw []byte) (BundleResponse, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return BundleResponse{}, err
	}
	var missing []string
	results := make(map[platform.ID]result.PlatformResult, len(platform.All()))
	for _, id := range platform.All() {
		node := obj.Get(id.String())
		if !node.IsObject() {
			missing = append(missing, id.String())
			results[id] = result.PlatformResult{}
			continue
		}
		results[id] = readPlatformResult(node, id.String()+".", false, &missing)
	}
	return BundleResponse{Results: results, Missing: missing}, nil
}

func parseGlobal(raw []byte) (GlobalResponse, error) {
	obj, err := parseObject(raw)
	if err != nil {
		return GlobalResponse{}, err
	}
	var missing []string
	return GlobalResponse{Combined: label(obj, "", fieldCombined, &missing), Missing: missing}, nil
}
