package spacepacket

// UserDataField wraps the opaque application payload. The framing layer
// never interprets these bytes.
type UserDataField struct {
	Data []byte
}

// NewUserDataField copies buf into a fresh UserDataField. The copy matters:
// decode paths hand in slices of a reused read buffer.
func NewUserDataField(buf []byte) UserDataField {
	return UserDataField{Data: append([]byte(nil), buf...)}
}

// Encode returns a copy of the payload bytes.
func (u UserDataField) Encode() []byte {
	return append([]byte(nil), u.Data...)
}
