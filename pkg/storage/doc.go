// Package storage fetches attachment content referenced by path or URL.
//
// A Fetcher resolves local paths, file:// URLs, http(s):// URLs and
// s3://bucket/key locations, enforcing a size limit and optional validation
// rules. The MIME type comes from the file extension or, failing that, from
// magic bytes.
//
// # Basic Usage
//
//	f, err := storage.New(storage.Config{
//		LocalRoot: "/srv/attachments",
//		S3: storage.S3Config{
//			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		},
//	}, storage.WithRules(storage.NotEmpty(), storage.Attachable()))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	file, err := f.Fetch(ctx, "s3://invoices/2024/A1.pdf")
//
// # Local Files
//
// With LocalRoot set, local paths must resolve inside that directory.
// Relative paths are taken as relative to the root; absolute paths outside it
// fail with ErrOutsideRoot.
//
// # Validation
//
//	f, err := storage.New(cfg, storage.WithRules(
//		storage.MaxSize(5 << 20),
//		storage.AllowedTypes("image/*", "application/pdf"),
//	))
//
// Rules run in order and the first failure is returned. Match it with
// errors.Is against ErrFileTooLarge, ErrInvalidMIME or ErrEmptyFile.
//
// # Configuration
//
// The Config struct supports environment variables:
//
//	type Config struct {
//		S3          S3Config      // S3_ACCESS_KEY, S3_SECRET_KEY, S3_ENDPOINT, S3_REGION, S3_PATH_STYLE
//		LocalRoot   string        // LOCAL_ROOT
//		MaxSize     int64         // MAX_SIZE (default: 25MB)
//		HTTPTimeout time.Duration // HTTP_TIMEOUT (default: 30s)
//	}
package storage
