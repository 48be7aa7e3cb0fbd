package gossip

import "encoding/json"

// IntentKind distinguishes the three gossip intents a node may publish.
type IntentKind int

const (
	// IntentAddFile mirrors the flagged AddFile/AddPin overlap: both kinds
	// resolve to the same pin/add call downstream. Preserved verbatim.
	IntentAddFile IntentKind = iota
	IntentAddPin
	IntentRmPin
)

// String names the intent kind, used as a metrics label.
func (k IntentKind) String() string {
	switch k {
	case IntentAddFile:
		return "AddFile"
	case IntentAddPin:
		return "AddPin"
	case IntentRmPin:
		return "RmPin"
	default:
		return "unknown"
	}
}

// Intent is the decoded form of a gossip message: a single-key JSON tagged
// union, e.g. {"AddFile":{"hash":"Qm..."}}.
type Intent struct {
	Kind IntentKind
	Hash string
}

type hashPayload struct {
	Hash string `json:"hash"`
}

// UnmarshalJSON accepts exactly one of the three known tag keys. Any other
// shape - multiple keys, an unknown tag, malformed payload - is a decode
// error; callers treat a decode error as "ignore this message" (P5), never
// as fatal.
func (i *Intent) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return errIntentShape
	}

	for tag, raw := range tagged {
		var p hashPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if p.Hash == "" {
			return errIntentShape
		}
		switch tag {
		case "AddFile":
			i.Kind = IntentAddFile
		case "AddPin":
			i.Kind = IntentAddPin
		case "RmPin":
			i.Kind = IntentRmPin
		default:
			return errIntentShape
		}
		i.Hash = p.Hash
	}
	return nil
}

// MarshalJSON re-encodes the intent back to its single-key wire shape,
// used by the RPC handlers when publishing a new intent.
func (i Intent) MarshalJSON() ([]byte, error) {
	var tag string
	switch i.Kind {
	case IntentAddFile:
		tag = "AddFile"
	case IntentAddPin:
		tag = "AddPin"
	case IntentRmPin:
		tag = "RmPin"
	default:
		return nil, errIntentShape
	}
	return json.Marshal(map[string]hashPayload{tag: {Hash: i.Hash}})
}

// DecodeIntent attempts to decode a raw gossip message. A decode failure
// is not logged by this function; callers decide whether and how to log
// it since silent-drop is the required behavior (P5).
func DecodeIntent(data []byte) (Intent, error) {
	var in Intent
	err := json.Unmarshal(data, &in)
	return in, err
}
