package ports

// CredentialCodec turns secrets into one-way verifiers and checks them.
type CredentialCodec interface {
	Hash(secret string) (string, error)
	Verify(secret, verifier string) bool
}
