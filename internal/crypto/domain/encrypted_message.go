package domain

// EncryptedMessage is the security envelope around a device payload.
//
// Data holds the ciphertext without the authentication tag, IV the per-message nonce
// and Tag the 16-byte authentication tag. The device id is bound as associated data
// and is therefore not part of the envelope. Byte slices marshal to standard base64
// in JSON, which keeps every field transport-safe.
type EncryptedMessage struct {
	Data []byte `json:"data"`
	IV   []byte `json:"iv"`
	Tag  []byte `json:"tag"`
}
