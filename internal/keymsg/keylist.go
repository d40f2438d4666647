package keymsg

import "github.com/majorcontext/agentkey/internal/wire"

// KeyList is the decoded body of an identities answer: the advertised
// key count and the keys themselves.
type KeyList struct {
	NKeys uint32
	Keys  []PublicKeyMsg
}

// NewKeyList cross-checks the advertised count against the keys
// actually present. A mismatch means the agent reported a count
// inconsistent with what it transmitted.
func NewKeyList(nkeys uint32, keys []PublicKeyMsg) (*KeyList, error) {
	if int(nkeys) != len(keys) {
		return nil, &ProtocolError{Reason: "identities count mismatch"}
	}
	return &KeyList{NKeys: nkeys, Keys: keys}, nil
}

// Contains reports whether the list holds a key structurally equal to
// m, ignoring comments.
func (l *KeyList) Contains(m PublicKeyMsg) bool {
	for _, k := range l.Keys {
		if k.Equal(m) {
			return true
		}
	}
	return false
}

// ParseKeyList decodes an identities answer body: a uint32 count
// followed by repeated (key blob, comment) pairs.
func ParseKeyList(blob []byte) (*KeyList, error) {
	nkeys, rest, err := wire.ConsumeUint32(blob)
	if err != nil {
		return nil, err
	}
	keys, err := parsePublicKeyMsgList(rest)
	if err != nil {
		return nil, err
	}
	return NewKeyList(nkeys, keys)
}

// parsePublicKeyMsgList decodes identity entries until the buffer is
// exhausted. Each entry is a length-prefixed key blob followed by a
// length-prefixed comment; the embedded algorithm name inside the key
// blob is peeked to choose the record shape, then the key fields and
// the comment (with its prefix reattached) are handed to that shape's
// decoder so field consumption lines up byte for byte.
func parsePublicKeyMsgList(blob []byte) ([]PublicKeyMsg, error) {
	var keys []PublicKeyMsg
	for len(blob) > 0 {
		keyBlob, rest, err := wire.ConsumeString(blob)
		if err != nil {
			return nil, err
		}
		comment, rest, err := wire.ConsumeString(rest)
		if err != nil {
			return nil, err
		}

		entry := make([]byte, 0, len(keyBlob)+4+len(comment))
		entry = append(entry, keyBlob...)
		entry = append(entry, wire.EncodeUint32(uint32(len(comment)))...)
		entry = append(entry, comment...)

		msg, trailing, err := ParsePublicKeyMsg(entry)
		if err != nil {
			return nil, err
		}
		if len(trailing) > 0 {
			return nil, &ProtocolError{Reason: "leftover bytes in identity entry"}
		}
		keys = append(keys, msg)
		blob = rest
	}
	return keys, nil
}
