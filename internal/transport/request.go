package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/kgsync/pkg/errors"
	"github.com/agentstation/kgsync/pkg/logging"
)

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 512

// DecodeResponse decodes a JSON response into the target structure.
// Non-200 responses become an *errors.APIError carrying the status code.
func DecodeResponse(resp *http.Response, endpoint string, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return errors.NewAPIError(endpoint, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
