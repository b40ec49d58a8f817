package config

const (
	// MaxCourseNameLength is the maximum length for course names.
	MaxCourseNameLength = 255

	// MaxCourseCodeLength is the maximum length for course codes.
	MaxCourseCodeLength = 32

	// MaxModuleNameLength is the maximum length for module names.
	MaxModuleNameLength = 255

	// MaxTopicNameLength is the maximum length for topic names.
	MaxTopicNameLength = 255

	// MaxMaterialNameLength is the maximum length for uploaded file names
	// and entered links.
	MaxMaterialNameLength = 255

	// MaxTopicsPerParsedModule caps how many extracted topics a parsed
	// module keeps. Longer lists are mostly noise from the looser tiers.
	MaxTopicsPerParsedModule = 10

	// MinSectionNumber and MaxSectionNumber bound the numbers accepted as
	// module numbers by the fallback "N. Name" scan.
	MinSectionNumber = 1
	MaxSectionNumber = 15

	// MinTopicsBeforeFallback is the number of topics a strategy must yield
	// before the looser strategies are skipped.
	MinTopicsBeforeFallback = 3
)
