package physics

const (
	DefaultGravity = -9.81

	CollisionAxisTolerance = 1e-9
	ContactSkin            = 1e-6

	SleepLinearThreshold = 1e-3
	SleepFrames          = 30

	MinimumResidualSpeed = 1e-6

	bodyPushStrength   = 0.7
	bodyPushMaxPerPair = 0.08
	bodyPushMaxPerStep = 0.12
)
