package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
	StorageS3    = "s3"
)

// Reputation deltas applied by votes and accepted answers.
const (
	RepQuestionUpvote   = 5
	RepQuestionDownvote = -2
	RepAnswerUpvote     = 10
	RepAnswerDownvote   = -5
	RepAcceptedAnswer   = 15
)

const (
	MaxTagsPerQuestion = 5
	MaxTagLength       = 50
	MaxCommentLength   = 1000
)
