package oracle

import (
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/types"
)

// HTTPFeed polls a JSON endpoint of the form {"answer": "<decimal>"} where the
// answer carries 8 decimals, matching the on-chain feeds it mirrors.
type HTTPFeed struct {
	url    string
	client *http.Client
}

func NewHTTPFeed(url string) *HTTPFeed {
	return &HTTPFeed{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type feedResponse struct {
	Answer string `json:"answer"`
}

func (f *HTTPFeed) LatestAnswer() (*big.Int, error) {
	logger.Debug("oracle: fetching latest answer...", zap.String("url", f.url))

	response, err := f.client.Get(f.url)
	if err != nil {
		return nil, errors.Wrap(err, "oracle: fetching latest answer")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, errors.Errorf("oracle: feed %s returned status %d", f.url, response.StatusCode)
	}

	var payload feedResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "oracle: decoding feed response")
	}

	answer, err := types.ParseAmount(payload.Answer)
	if err != nil {
		return nil, errors.Wrap(err, "oracle: decoding feed answer")
	}

	logger.Debug("oracle: fetching latest answer... done", zap.String("answer", answer.String()))
	return answer, nil
}
