package artifact

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchivePatterns — файлы рабочей директории, которые сохраняются.
// Волновые функции и *.save не архивируются: они большие и
// восстанавливаются повторным расчётом.
var ArchivePatterns = []string{
	"*.in", "*.out", "*.xml", "lambda", "QE.dyn*", "QE333.*", "*.dos",
}

// Store архивирует артефакты runs в S3-совместимое хранилище.
type Store struct {
	client *minio.Client
	bucket string
	region string
}

// NewStore создаёт Store по конфигурации.
func NewStore(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &Store{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket создаёт bucket, если его нет.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ArchiveRun загружает артефакты workDir под префикс runs/<run_id>/.
// Возвращает количество загруженных файлов.
func (s *Store) ArchiveRun(ctx context.Context, runID uuid.UUID, workDir string) (int, error) {
	files, err := ArchiveFiles(workDir)
	if err != nil {
		return 0, err
	}

	for i, name := range files {
		opts := minio.PutObjectOptions{ContentType: contentType(name)}
		_, err := s.client.FPutObject(ctx, s.bucket, ObjectKey(runID, name), filepath.Join(workDir, name), opts)
		if err != nil {
			return i, fmt.Errorf("upload %s: %w", name, err)
		}
	}

	return len(files), nil
}

// ArchiveFiles возвращает отсортированные имена обычных файлов workDir,
// подходящих под ArchivePatterns.
func ArchiveFiles(workDir string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range ArchivePatterns {
		matches, err := filepath.Glob(filepath.Join(workDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[filepath.Base(m)] = struct{}{}
		}
	}

	files := make([]string, 0, len(seen))
	for name := range seen {
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// ObjectKey возвращает ключ объекта для файла run.
func ObjectKey(runID uuid.UUID, name string) string {
	return path.Join("runs", runID.String(), name)
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".xml") {
		return "application/xml"
	}
	return "text/plain"
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
