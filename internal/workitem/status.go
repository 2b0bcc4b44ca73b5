package workitem

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Status int

const (
	StatusNew        Status = 1
	StatusPending    Status = 2
	StatusInProgress Status = 3
	StatusCompleted  Status = 4
)

var statusNames = map[Status]string{
	StatusNew:        "New",
	StatusPending:    "Pending",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus accepts a status name in any letter case or its number.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for status, name := range statusNames {
		if strings.EqualFold(name, s) {
			return status, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Status(n).IsValid() {
		return Status(n), nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return json.Marshal(int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := ParseStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("status must be a whole number, got %v", v)
		}
		*s = Status(int(v))
	default:
		return fmt.Errorf("status must be a string or number")
	}
	return nil
}
