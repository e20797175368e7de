package domain

// UserID identifies a registered user.
type UserID string

// String returns the string form of the user id.
func (id UserID) String() string { return string(id) }

// User is the server-visible profile record. PublicKey is the base64
// form of the user's Curve25519 public key; the server never holds the
// secret half.
type User struct {
	ID          UserID `json:"id"`
	Phone       string `json:"phone"`
	DisplayName string `json:"displayName"`
	PublicKey   string `json:"publicKey"`
	CreatedAt   int64  `json:"createdAt"`
}

// Session binds an opaque bearer token to a user.
type Session struct {
	ID        string `json:"id"`
	UserID    UserID `json:"userId"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"createdAt"`
}

// MessageBox is the sealed payload of one text message: ciphertext and
// nonce, both base64 so they round-trip byte-for-byte through JSON.
// The server stores and relays these without any way to open them.
type MessageBox struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
}

// StoredMessage is the server record for one sealed message. Everything
// outside MessageBox is routing metadata; plaintext content never
// appears here.
type StoredMessage struct {
	ID          string `json:"id"`
	SenderID    UserID `json:"senderId"`
	RecipientID UserID `json:"recipientId"`
	Ciphertext  string `json:"ciphertext"`
	Nonce       string `json:"nonce"`
	CreatedAt   int64  `json:"createdAt"`
}
