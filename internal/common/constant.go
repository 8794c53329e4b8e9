package common

// CredentialKindBearer is the only credential kind currently issued by the
// backend; the kind is stored alongside the token so future kinds can be
// introduced without a schema change.
const CredentialKindBearer = "bearer"
