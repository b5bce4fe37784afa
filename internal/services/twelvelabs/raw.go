package twelvelabs

import "encoding/json"

// rawCapture keeps the undecoded response so failures can be reported with
// the service's own wording.
type rawCapture struct {
	data json.RawMessage
}

func (r *rawCapture) UnmarshalJSON(data []byte) error {
	r.data = append(r.data[:0], data...)
	return nil
}

func (r *rawCapture) decode(out any) error {
	if len(r.data) == 0 {
		return nil
	}
	return json.Unmarshal(r.data, out)
}

func (r *rawCapture) String() string {
	return truncateBody(r.data)
}
