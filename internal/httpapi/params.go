package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/contriboard/schema"
)

func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("%s must be a non-negative integer", name)
	}
	return n, nil
}

// timeQuery accepts RFC 3339 timestamps or plain YYYY-MM-DD dates (UTC midnight).
func timeQuery(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, badRequest("%s must be RFC 3339 or YYYY-MM-DD", name)
}

// typesQuery reads a comma separated list of activity types, case-insensitive.
func typesQuery(r *http.Request, name string) ([]schema.ActivityType, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var types []schema.ActivityType
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := schema.ActivityType(strings.ToUpper(part))
		if _, ok := schema.ValidActivityTypes[t]; !ok {
			return nil, badRequest("unknown activity type %q", part)
		}
		types = append(types, t)
	}
	return types, nil
}

func sortQuery(r *http.Request) (schema.SortKey, bool, error) {
	q := r.URL.Query()
	key := schema.SortKey(q.Get("sortBy"))
	if key == "" {
		key = schema.SortByScore
	}
	if _, ok := schema.ValidSortKeys[key]; !ok {
		return "", false, badRequest("unknown sortBy %q", key)
	}
	switch strings.ToLower(q.Get("sortOrder")) {
	case "", "desc":
		return key, false, nil
	case "asc":
		return key, true, nil
	default:
		return "", false, badRequest("sortOrder must be asc or desc")
	}
}
