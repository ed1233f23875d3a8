package cleaner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carclinic/pipeline/models"
)

// gatewayReply mirrors the JSON object the model is instructed to emit.
// Pointers distinguish absent fields from empty ones.
type gatewayReply struct {
	IsValid   *bool   `json:"is_valid"`
	Problem   *string `json:"problem"`
	Solution  *string `json:"solution"`
	ExtraHelp *string `json:"extra_help"`
}

// ParseResponse interprets a gateway response for one row. It returns
// exactly one of: a validated record, negative=true (the model's
// deliberate is_valid=false classification), or an error for anything
// that is not a well-formed reply.
func ParseResponse(response, postID string) (record *models.CleanedRecord, negative bool, err error) {
	payload, ok := extractJSON(response)
	if !ok {
		return nil, false, fmt.Errorf("no JSON object in response")
	}

	var reply gatewayReply
	if err := json.Unmarshal([]byte(payload), &reply); err != nil {
		return nil, false, fmt.Errorf("malformed JSON: %w", err)
	}
	if reply.IsValid == nil {
		return nil, false, fmt.Errorf("missing is_valid field")
	}
	if !*reply.IsValid {
		return nil, true, nil
	}

	if reply.Problem == nil || strings.TrimSpace(*reply.Problem) == "" {
		return nil, false, fmt.Errorf("is_valid=true but problem missing")
	}
	if reply.Solution == nil || strings.TrimSpace(*reply.Solution) == "" {
		return nil, false, fmt.Errorf("is_valid=true but solution missing")
	}

	extraHelp := ""
	if reply.ExtraHelp != nil {
		extraHelp = *reply.ExtraHelp
	}

	return &models.CleanedRecord{
		PostID:    postID,
		Problem:   *reply.Problem,
		Solution:  *reply.Solution,
		ExtraHelp: extraHelp,
	}, false, nil
}

// extractJSON cuts the response down to the outermost JSON object:
// first '{' through last '}'. Models often wrap the object in fences or
// prose despite the instructions.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
