package identity

import "time"

// Principal is an authenticated operator of the ledger. Its address doubles
// as the ledger account it controls and the subject roles are granted to.
type Principal struct {
	Address    string
	Name       string
	SecretHash []byte
	CreatedAt  time.Time
}

// Credentials carries a login or registration request.
type Credentials struct {
	Name   string
	Secret string
}
