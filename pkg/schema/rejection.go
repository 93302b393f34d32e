package schema

import (
	"encoding/json"
	"errors"
)

// Rejection keeps a draft the continuity gate refused, with the verdict that
// refused it. Stored so a later regeneration can be checked against it.
type Rejection struct {
	Reason     string               `json:"reason"`
	Text       string               `json:"text"`
	Assessment ContinuityAssessment `json:"assessment"`

	Error error  `json:"-"`
	Raw   string `json:"raw,omitzero"`
}

type rejectionAlias struct {
	Reason     string               `json:"reason"`
	Text       string               `json:"text"`
	Assessment ContinuityAssessment `json:"assessment"`
	Error      string               `json:"error,omitzero"`
	Raw        string               `json:"raw,omitzero"`
}

func (r *Rejection) MarshalJSON() ([]byte, error) {
	if r == nil {
		return nil, nil
	}

	a := rejectionAlias{
		Reason:     r.Reason,
		Text:       r.Text,
		Assessment: r.Assessment,
		Raw:        r.Raw,
	}
	if r.Error != nil {
		a.Error = r.Error.Error()
	}

	return json.Marshal(a)
}

func (r *Rejection) UnmarshalJSON(data []byte) error {
	var a rejectionAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	r.Reason = a.Reason
	r.Text = a.Text
	r.Assessment = a.Assessment
	if a.Error != "" {
		r.Error = errors.New(a.Error)
	}
	r.Raw = a.Raw

	return nil
}
