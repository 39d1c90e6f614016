package recommended

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

var (
	ErrRemoteThrottled = errors.New("remote recommender throttled")
	ErrRemoteResponse  = errors.New("unexpected remote recommender response")
)

const defaultRemoteTimeout = 800 * time.Millisecond

// HTTPRemote posts a Request as JSON to an external recommender. The response may be a
// bare array or an object with an items or recommendations array; each entry needs an
// id (or productId) and may carry reason and score.
type HTTPRemote struct {
	url     string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewHTTPRemote builds a client; rps <= 0 disables throttling.
func NewHTTPRemote(url string, timeout time.Duration, rps float64) *HTTPRemote {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &HTTPRemote{url: url, timeout: timeout, limiter: limiter}
}

func (r *HTTPRemote) Recommend(ctx context.Context, req Request) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.limiter.Allow() {
		return nil, ErrRemoteThrottled
	}

	agent := fiber.Post(r.url).JSON(req).Timeout(r.timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("call remote recommender: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteResponse, code)
	}
	return parseSuggestions(body)
}

func parseSuggestions(body []byte) ([]Suggestion, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrRemoteResponse)
	}
	root := gjson.ParseBytes(body)
	list := root
	if !root.IsArray() {
		list = root.Get("items")
		if !list.IsArray() {
			list = root.Get("recommendations")
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: no suggestion list", ErrRemoteResponse)
	}

	out := make([]Suggestion, 0)
	list.ForEach(func(_, v gjson.Result) bool {
		id := v.Get("id")
		if !id.Exists() {
			id = v.Get("productId")
		}
		n, ok := suggestionID(id)
		if !ok {
			return true
		}
		sug := Suggestion{ID: n, Reason: v.Get("reason").String()}
		if sc := v.Get("score"); sc.Type == gjson.Number {
			f := sc.Float()
			sug.Score = &f
		}
		out = append(out, sug)
		return true
	})
	return out, nil
}

func suggestionID(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		if float64(v.Int()) != v.Float() {
			return 0, false
		}
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		return n, err == nil
	default:
		return 0, false
	}
}
