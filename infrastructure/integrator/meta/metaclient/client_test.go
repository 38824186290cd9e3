package metaclient

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

func TestClassifyError_TokenExpired(t *testing.T) {
	body := `{"error":{"message":"Error validating access token","type":"OAuthException","code":190,"fbtrace_id":"A1b2C3"}}`
	classified := classifyError(400, []byte(body))

	assert.Equal(t, prismErrors.KindTokenExpired, classified.Kind)
	assert.Equal(t, prismErrors.RecoveryReconnect, classified.Recovery())
}

func TestClassifyError_TokenSubcodes(t *testing.T) {
	for _, subcode := range []int{460, 463, 467} {
		body := fmt.Sprintf(
			`{"error":{"message":"Session invalid","type":"OAuthException","code":102,"error_subcode":%d,"fbtrace_id":"A1b2C3"}}`,
			subcode,
		)
		classified := classifyError(400, []byte(body))
		assert.Equal(t, prismErrors.KindTokenExpired, classified.Kind, "subcode %d", subcode)
	}
}

func TestClassifyError_RateLimited(t *testing.T) {
	body := `{"error":{"message":"Application request limit reached","type":"OAuthException","code":4,"fbtrace_id":"A1b2C3"}}`
	classified := classifyError(400, []byte(body))

	assert.Equal(t, prismErrors.KindRateLimited, classified.Kind)
	assert.Equal(t, 60*time.Second, classified.RetryAfter)
}

func TestClassifyError_PermissionDenied(t *testing.T) {
	body := `{"error":{"message":"Permission denied","type":"OAuthException","code":10,"fbtrace_id":"A1b2C3"}}`
	classified := classifyError(400, []byte(body))

	assert.Equal(t, prismErrors.KindAccountAccess, classified.Kind)
	assert.Equal(t, prismErrors.RecoverySelectAccount, classified.Recovery())
}

func TestClassifyError_FallsBackToHTTPStatus(t *testing.T) {
	classified := classifyError(500, []byte("<html>Server Error</html>"))
	assert.Equal(t, prismErrors.KindAPIError, classified.Kind)

	classified = classifyError(429, []byte(`{}`))
	assert.Equal(t, prismErrors.KindRateLimited, classified.Kind)
}
