package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/flow"
	"github.com/ASHISH26940/asmr-studio-api/pkg/promptgen"
	"github.com/ASHISH26940/asmr-studio-api/pkg/services"
	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI answers the handful of endpoints the runner uses.
type fakeAPI struct {
	mu         sync.Mutex
	funded     bool
	polls      int
	verified   []string
	videoBody  map[string]string
	failVideo  bool
	pollsUntil int
}

func (f *fakeAPI) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/enhance", func(c *gin.Context) {
		items := []promptgen.PromptItem{
			{Title: "Window", Description: "Rain on a cabin window"},
			{Title: "Fire", Description: "A crackling fire in the cabin"},
		}
		utils.ResponseWithSuccess(c, http.StatusOK, "ok", gin.H{"enhancedPrompts": items})
	})
	r.GET("/api/wallet", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w := services.Wallet{PriceCents: 600}
		if f.funded {
			w.BalanceCents, w.Balance, w.VideosAvailable, w.CanGenerate = 600, 6, 1, true
		}
		utils.ResponseWithSuccess(c, http.StatusOK, "ok", w)
	})
	r.POST("/api/payments/checkout", func(c *gin.Context) {
		utils.ResponseWithSuccess(c, http.StatusOK, "ok", gin.H{"url": "https://pay.example/cs_1", "sessionId": "cs_1"})
	})
	r.POST("/api/payments/verify", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		f.verified = append(f.verified, body["sessionId"])
		f.funded = true
		f.mu.Unlock()
		utils.ResponseWithSuccess(c, http.StatusOK, "ok", nil)
	})
	r.POST("/api/videos", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.videoBody = body
		if !f.funded {
			utils.ResponseWithPaymentRequired(c, "Insufficient wallet balance", 0, 600)
			return
		}
		utils.ResponseWithSuccess(c, http.StatusCreated, "ok", gin.H{"videoId": "v1", "predictionId": "pred_1", "status": "starting"})
	})
	r.GET("/api/predictions/:id", func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.polls++
		st := services.PredictionStatus{ID: c.Param("id"), Status: "processing"}
		if f.polls > f.pollsUntil {
			st.Done = true
			if f.failVideo {
				st.Status, st.Error = "failed", "content flagged"
			} else {
				st.Status, st.OutputURL = "succeeded", "https://cdn.example/out.mp4"
			}
		}
		utils.ResponseWithSuccess(c, http.StatusOK, "ok", st)
	})
	return r
}

func (f *fakeAPI) snapshot() (videoBody map[string]string, verified []string, polls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.videoBody, append([]string(nil), f.verified...), f.polls
}

func runMake(t *testing.T, api *fakeAPI, stdin string, pick int) (*Runner, string, string, error) {
	t.Helper()
	srv := httptest.NewServer(api.router())
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	r := NewRunner(NewClient(srv.URL, "tok"), strings.NewReader(stdin), &out, 5*time.Millisecond, "starter")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url, err := r.Make(ctx, "rain in a cabin", pick)
	return r, url, out.String(), err
}

func TestMakeWithFundedWallet(t *testing.T) {
	api := &fakeAPI{funded: true, pollsUntil: 2}
	r, url, out, err := runMake(t, api, "", 2)

	require.NoError(t, err, out)
	assert.Equal(t, "https://cdn.example/out.mp4", url)
	assert.Equal(t, flow.Done, r.State())
	body, verified, polls := api.snapshot()
	assert.Equal(t, "A crackling fire in the cabin", body["enhancedPrompt"])
	assert.Equal(t, "rain in a cabin", body["originalPrompt"])
	assert.Equal(t, 3, polls)
	assert.Empty(t, verified)
}

func TestMakeAsksForPickAndPayment(t *testing.T) {
	api := &fakeAPI{}
	r, url, out, err := runMake(t, api, "1\ncs_1\n", 0)

	require.NoError(t, err, out)
	assert.Equal(t, "https://cdn.example/out.mp4", url)
	body, verified, _ := api.snapshot()
	assert.Equal(t, []string{"cs_1"}, verified)
	assert.Contains(t, out, "https://pay.example/cs_1")
	assert.Equal(t, flow.Done, r.State())
	assert.Equal(t, "Rain on a cabin window", body["enhancedPrompt"])
}

func TestMakePaymentCanceled(t *testing.T) {
	api := &fakeAPI{}
	r, _, _, err := runMake(t, api, "\n", 1)

	assert.ErrorIs(t, err, errPaymentCanceled)
	assert.Equal(t, flow.Idle, r.State())
	body, _, _ := api.snapshot()
	assert.Nil(t, body)
}

func TestMakeProviderFailure(t *testing.T) {
	api := &fakeAPI{funded: true, failVideo: true}
	r, _, _, err := runMake(t, api, "", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "content flagged")
	assert.Equal(t, flow.Error, r.State())
}

func TestMakeRejectsOutOfRangePick(t *testing.T) {
	api := &fakeAPI{funded: true}
	r, _, _, err := runMake(t, api, "", 7)

	require.Error(t, err)
	assert.Equal(t, flow.Error, r.State())
}

func TestClientSurfacesPaymentRequired(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.router())
	defer srv.Close()

	_, err := NewClient(srv.URL, "tok").CreateVideo(context.Background(), "x", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.PaymentRequired())
	assert.InDelta(t, 6.0, apiErr.RequiredAmount, 0.001)
}
