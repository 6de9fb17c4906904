// Package evalsvc talks to the sandboxed formula evaluation service over
// HTTP. The service executes tenant-supplied source text against the data
// context and may call back into host functions with the secret context;
// this client only ships payloads and coerces the answer.
package evalsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/eval"
)

type (
	executeRequest struct {
		Code          string             `json:"code"`
		SecretContext eval.SecretContext `json:"secret_context"`
		DataContext   eval.DataContext   `json:"data_context"`
	}

	executeResponse struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}

	httpService struct {
		address string
		client  *http.Client
	}
)

var _ eval.Evaluator = (*httpService)(nil)

func NewHTTPService(conf *core.Config) eval.Evaluator {
	return &httpService{
		address: conf.Evaluator.Address,
		// the per-call deadline comes from ctx; no client-level timeout
		client: &http.Client{},
	}
}

func (svc *httpService) Execute(
	ctx context.Context, source string, secret eval.SecretContext, data eval.DataContext,
) (bool, error) {
	body, err := json.Marshal(executeRequest{Code: source, SecretContext: secret, DataContext: data})
	if err != nil {
		return false, errors.Wrap(err, "marshaling execute request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.address+"/execute", bytes.NewReader(body))
	if err != nil {
		return false, errors.Wrap(err, "building execute request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "calling evaluator")
	}
	defer func() { _ = res.Body.Close() }()

	var out executeResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, errors.Wrap(err, "decoding evaluator response")
	}
	if out.Error != "" {
		return false, errors.New(out.Error)
	}
	if res.StatusCode != http.StatusOK {
		return false, errors.Errorf("evaluator returned status %d", res.StatusCode)
	}
	if out.Result == nil {
		return false, errors.New("evaluator returned no result")
	}
	return truthy(out.Result)
}

// truthy coerces the evaluator's JSON result the way the sandbox language
// would: false, 0, "" and null are falsy, everything else is truthy.
func truthy(raw json.RawMessage) (bool, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, errors.Wrap(err, "decoding evaluator result")
	}
	switch val := v.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case float64:
		return val != 0, nil
	case string:
		return val != "", nil
	case []interface{}, map[string]interface{}:
		return true, nil
	default:
		return false, errors.Errorf("evaluator result %T cannot be coerced to boolean", v)
	}
}
