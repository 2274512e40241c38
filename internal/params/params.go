package params

const (
	SecParam = 256
	SecBytes = SecParam / 8

	// OTParam is the number of OT receiver base keys exchanged with each MtA counterpart.
	OTParam = 128

	// Polynomials is the number of sharings run in a signing session: D, E, A, K, P.
	Polynomials = 5

	BytesScalar = 32
	BytesPoint  = 33

	// BytesBValue is the size of the MtA input K ∥ A ∥ x ∥ P.
	BytesBValue = 4 * BytesScalar // = 128

	// MaxParticipants bounds N, so that counts always fit the party.Index range.
	MaxParticipants = 255
)
