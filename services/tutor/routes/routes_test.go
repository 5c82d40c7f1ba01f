// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/agent"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/llm"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/tools"
	"github.com/AleutianAI/quantumiq/services/tutor/challenges"
	"github.com/AleutianAI/quantumiq/services/tutor/middleware"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

type testServer struct {
	router *gin.Engine
	mock   *llm.MockClient
	store  store.Store
}

func newTestServer(t *testing.T, rateLimitRPS float64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := challenges.NewService(st, quantum.NewPipeline(quantum.WithSeed(1), quantum.WithShots(128)), 0.9)
	require.NoError(t, err)

	registry, err := tools.NewDefaultRegistry(tools.Deps{Store: st, Challenges: svc})
	require.NoError(t, err)

	mock := llm.NewMockClient()
	loop, err := agent.NewLoop(mock, registry, tools.NewExecutor(registry, 5*time.Second, nil))
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, Deps{
		Loop:           loop,
		Challenges:     svc,
		Store:          st,
		DefaultShots:   256,
		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: 2,
	})
	return &testServer{router: router, mock: mock, store: st}
}

func (s *testServer) do(t *testing.T, method, path, learnerID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if learnerID != "" {
		req.Header.Set(middleware.LearnerHeader, learnerID)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 0)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "quantumiq")
}

func TestSimulate(t *testing.T) {
	s := newTestServer(t, 0)

	t.Run("bell circuit", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/simulate", "", gin.H{
			"num_qubits": 2,
			"circuit": []gin.H{
				{"gate": "h", "targets": []int{0}},
				{"gate": "cx", "targets": []int{0, 1}},
			},
			"shots": 512,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Statevector       [][2]float64       `json:"statevector"`
			Probabilities     map[string]float64 `json:"probabilities"`
			MeasurementCounts map[string]int     `json:"measurement_counts"`
			Shots             int                `json:"shots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Statevector, 4)
		assert.InDelta(t, 0.5, resp.Probabilities["00"], 1e-9)
		assert.InDelta(t, 0.5, resp.Probabilities["11"], 1e-9)
		assert.Equal(t, 512, resp.Shots)

		total := 0
		for _, n := range resp.MeasurementCounts {
			total += n
		}
		assert.Equal(t, 512, total)
	})

	t.Run("default shots", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/simulate", "", gin.H{
			"num_qubits": 1,
			"circuit":    []gin.H{{"gate": "h", "targets": []int{0}}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Shots int `json:"shots"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 256, resp.Shots)
	})

	t.Run("unknown gate rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/simulate", "", gin.H{
			"num_qubits": 1,
			"circuit":    []gin.H{{"gate": "warp", "targets": []int{0}}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "warp")
	})

	t.Run("register too wide rejected", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/simulate", "", gin.H{
			"num_qubits": 6,
			"circuit":    []gin.H{{"gate": "h", "targets": []int{0}}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSimulateStep(t *testing.T) {
	s := newTestServer(t, 0)
	rec := s.do(t, http.MethodPost, "/v1/simulate/step", "", gin.H{
		"num_qubits": 2,
		"circuit": []gin.H{
			{"gate": "h", "targets": []int{0}},
			{"gate": "cx", "targets": []int{0, 1}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var trace struct {
		Steps []struct {
			Probabilities map[string]float64 `json:"probabilities"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trace))
	require.Len(t, trace.Steps, 3)
	assert.InDelta(t, 1.0, trace.Steps[0].Probabilities["00"], 1e-9)
	assert.InDelta(t, 0.5, trace.Steps[2].Probabilities["11"], 1e-9)
}

func TestChallengeEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	t.Run("presets are public", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/v1/challenges/presets", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Presets []struct {
				Key string `json:"key"`
			} `json:"presets"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Presets, 6)
	})

	t.Run("start requires learner header", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/challenges/start", "", gin.H{"key": "bell_state"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("start submit history flow", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/challenges/start", "alice", gin.H{"key": "bell_state"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var inst struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inst))
		require.NotEmpty(t, inst.ID)

		rec = s.do(t, http.MethodPost, "/v1/challenges/submit", "alice", gin.H{
			"challenge_id": inst.ID,
			"num_qubits":   2,
			"circuit": []gin.H{
				{"gate": "h", "targets": []int{0}},
				{"gate": "cx", "targets": []int{0, 1}},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var result struct {
			Passed bool    `json:"passed"`
			Score  float64 `json:"score"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Passed)

		rec = s.do(t, http.MethodGet, "/v1/challenges/history", "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var history struct {
			Attempts []struct {
				ChallengeID string `json:"challenge_id"`
				Passed      bool   `json:"passed"`
			} `json:"attempts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
		require.Len(t, history.Attempts, 1)
		assert.Equal(t, "bell_state", history.Attempts[0].ChallengeID)
	})

	t.Run("unknown preset is 404", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/challenges/start", "alice", gin.H{"key": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("generated challenge by concept", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/challenges/start", "alice", gin.H{
			"concept":    "phase",
			"difficulty": "medium",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "T Gate Phase")
	})
}

func TestChat(t *testing.T) {
	s := newTestServer(t, 0)
	s.mock.QueueToolCall("get_user_circuit", nil)
	s.mock.QueueFinalResponse("Your `H` gate puts qubit 0 into |+⟩.")

	rec := s.do(t, http.MethodPost, "/v1/chat", "alice", gin.H{
		"message": "what is my circuit doing?",
		"circuit": gin.H{
			"num_qubits": 1,
			"circuit":    []gin.H{{"gate": "h", "targets": []int{0}}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Reply      string `json:"reply"`
		Iterations int    `json:"iterations"`
		ToolCalls  []struct {
			Tool string `json:"tool"`
		} `json:"tool_calls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Your `H` gate puts qubit 0 into |+⟩.", resp.Reply)
	assert.Equal(t, 2, resp.Iterations)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "get_user_circuit", resp.ToolCalls[0].Tool)
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(t, 0)

	t.Run("missing message", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/chat", "alice", gin.H{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad learner id", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/chat", "a/b", gin.H{"message": "hi"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestProgress(t *testing.T) {
	s := newTestServer(t, 0)

	rec := s.do(t, http.MethodGet, "/v1/progress", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mastery")
	// No plan yet: the key is simply absent.
	assert.NotContains(t, rec.Body.String(), "learning_plan")
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, 1) // 1 rps, burst 2

	t.Run("burst exhaustion", func(t *testing.T) {
		status := make(map[int]int)
		for i := 0; i < 5; i++ {
			rec := s.do(t, http.MethodGet, "/v1/challenges/history", "alice", nil)
			status[rec.Code]++
		}
		assert.Greater(t, status[http.StatusTooManyRequests], 0, "burst exhausted requests should be limited")
		assert.Greater(t, status[http.StatusOK], 0, "burst allowance should admit some requests")
	})

	t.Run("buckets are per learner", func(t *testing.T) {
		// Same client IP throughout, so a fresh learner getting through
		// after another learner's bucket is drained proves learner keying.
		for i := 0; i < 5; i++ {
			s.do(t, http.MethodGet, "/v1/challenges/history", "carol", nil)
		}
		rec := s.do(t, http.MethodGet, "/v1/challenges/history", "dave", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
