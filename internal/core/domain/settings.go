package domain

// Settings are the engine settings declared by a build description.
// Zero values mean "use the default".
type Settings struct {
	Concurrency    int
	Digest         DigestAlgorithm
	CleanOnFailure bool
}
