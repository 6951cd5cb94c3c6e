package turtlecoind

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/cnwallet/walletd/pkg/circuitbreaker"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/cnwallet/walletd/pkg/util"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	infoPath        = "/info"
	walletSyncPath  = "/getwalletsyncdata"
	healthTimeout   = 5 * time.Second
	requestIDHeader = "X-Request-Id"
	contentTypeJSON = "application/json"
	breakerName     = "turtlecoind"
)

// Options configures the daemon client.
type Options struct {
	// Endpoint is the base url of the daemon, like http://127.0.0.1:11898.
	Endpoint string
	// RequestTimeout bounds every http request.
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second, 0 for no limit.
	RateLimit int
	// BlockCount is the max number of blocks asked per sync request, 0 to
	// let the daemon decide.
	BlockCount uint64
}

type service struct {
	endpoint   string
	blockCount uint64

	client  *http.Client
	limiter ratelimit.Limiter
	cb      *gobreaker.CircuitBreaker
}

// NewService returns a client for the daemon at opts.Endpoint, after making
// sure the daemon answers.
func NewService(opts Options) (ports.Daemon, error) {
	if opts.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}

	limiter := ratelimit.NewUnlimited()
	if opts.RateLimit > 0 {
		limiter = ratelimit.New(opts.RateLimit)
	}

	svc := &service{
		endpoint:   strings.TrimRight(opts.Endpoint, "/"),
		blockCount: opts.BlockCount,
		client:     util.NewHTTPClient(opts.RequestTimeout),
		limiter:    limiter,
		cb:         circuitbreaker.NewCircuitBreaker(breakerName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()
	if err := svc.healthCheck(ctx); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return svc, nil
}

func (s *service) GetWalletSyncData(
	ctx context.Context,
	blockHashCheckpoints []cncrypto.Hash,
	startTimestamp uint64,
) ([]domain.RawBlock, error) {
	checkpoints := make([]string, 0, len(blockHashCheckpoints))
	for _, h := range blockHashCheckpoints {
		checkpoints = append(checkpoints, h.String())
	}

	body, err := json.Marshal(walletSyncDataRequest{
		BlockHashCheckpoints: checkpoints,
		StartTimestamp:       startTimestamp,
		BlockCount:           s.blockCount,
	})
	if err != nil {
		return nil, err
	}

	resp := walletSyncDataResponse{}
	if err := s.call(
		ctx, http.MethodPost, walletSyncPath, string(body), &resp,
	); err != nil {
		return nil, err
	}
	if resp.Status != statusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatusNotOK, resp.Status)
	}

	blocks := make([]domain.RawBlock, 0, len(resp.Items))
	for _, item := range resp.Items {
		block, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (s *service) GetInfo(ctx context.Context) (*ports.DaemonInfo, error) {
	resp := infoResponse{}
	if err := s.call(ctx, http.MethodGet, infoPath, "", &resp); err != nil {
		return nil, err
	}
	if resp.Status != "" && resp.Status != statusOK {
		return nil, fmt.Errorf("%w: %s", ErrStatusNotOK, resp.Status)
	}

	// The daemon reports block counts, one more than the top height.
	return &ports.DaemonInfo{
		Height:        blockCountToHeight(resp.Height),
		NetworkHeight: blockCountToHeight(resp.NetworkHeight),
	}, nil
}

func (s *service) healthCheck(ctx context.Context) error {
	_, err := s.GetInfo(ctx)
	return err
}

// call runs a rate limited request through the circuit breaker and decodes
// the json response into out.
func (s *service) call(
	ctx context.Context, method, path, body string, out interface{},
) error {
	requestID := uuid.New().String()
	url := s.endpoint + path
	header := map[string]string{
		"Content-Type":  contentTypeJSON,
		requestIDHeader: requestID,
	}

	s.limiter.Take()

	res, err := s.cb.Execute(func() (interface{}, error) {
		status, resp, err := util.NewHTTPRequest(
			ctx, s.client, method, url, body, header,
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%s %s: %d %s", method, path, status, resp)
		}
		return resp, nil
	})
	if err != nil {
		log.WithError(err).WithField("request_id", requestID).Debugf(
			"daemon: request %s %s failed", method, path,
		)
		return err
	}

	if err := json.Unmarshal([]byte(res.(string)), out); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, err)
	}
	return nil
}

func blockCountToHeight(count uint64) uint64 {
	if count == 0 {
		return 0
	}
	return count - 1
}
