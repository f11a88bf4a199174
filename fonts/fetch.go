package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
)

// ErrAssetFetchFailed 表示远端字型无法取得。导出应中止，由用户重试。
var ErrAssetFetchFailed = errors.New("无法载入字型档，请稍后再试")

// AssetFetchError 记录失败的下载来源与原因，errors.Is(err, ErrAssetFetchFailed) 为真。
type AssetFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *AssetFetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s（%s 返回 HTTP %d）", ErrAssetFetchFailed, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s（%s: %v）", ErrAssetFetchFailed, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s（%s）", ErrAssetFetchFailed, e.URL)
	}
}

func (e *AssetFetchError) Unwrap() error { return e.Err }

func (e *AssetFetchError) Is(target error) bool { return target == ErrAssetFetchFailed }

// Fetcher 取得字型档的二进制数据。
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc 让普通函数满足 Fetcher。
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

// DefaultMaxBytes 限制单个字型档的大小。
const DefaultMaxBytes = 64 << 20

// HTTPFetcher 通过 HTTP(S) 下载字型，并按 URL 缓存成功的结果。
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64

	mu    sync.Mutex
	cache map[string][]byte
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 创建下载器；client 为空时使用 60 秒超时的默认客户端。
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPFetcher{client: client, maxBytes: DefaultMaxBytes, cache: map[string][]byte{}}
}

// Fetch 下载 url 指向的字型。任何失败都以 *AssetFetchError 返回。
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	if data, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return data, nil
	}
	f.mu.Unlock()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &AssetFetchError{URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &AssetFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AssetFetchError{URL: url, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &AssetFetchError{URL: url, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &AssetFetchError{URL: url, Err: fmt.Errorf("字型档超过 %d 字节", f.maxBytes)}
	}
	if len(data) == 0 {
		return nil, &AssetFetchError{URL: url, Err: errors.New("字型档为空")}
	}
	logger.Debugf("已下载字型 %s（%d 字节，%s）", url, len(data), time.Since(start))

	f.mu.Lock()
	f.cache[url] = data
	f.mu.Unlock()
	return data, nil
}
