package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"supportviz/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply    string
	err      error
	calls    atomic.Int32
	messages []Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	f.calls.Add(1)
	f.messages = messages
	return f.reply, f.err
}

func TestChatEndpoint(t *testing.T) {
	cases := map[string]string{
		"":                                     "https://api.openai.com/v1/chat/completions",
		"http://host":                          "http://host/v1/chat/completions",
		"http://host/v1/":                      "http://host/v1/chat/completions",
		"https://open.bigmodel.cn/api/paas/v4": "https://open.bigmodel.cn/api/paas/v4/chat/completions",
		"http://host/v1/chat/completions":      "http://host/v1/chat/completions",
	}
	for in, want := range cases {
		assert.Equal(t, want, chatEndpoint(in), in)
	}
}

func TestOpenAICompleter_Complete(t *testing.T) {
	t.Run("plain string content", func(t *testing.T) {
		var got chatRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
		}))
		defer srv.Close()

		c := NewOpenAICompleter("secret", "glm-4-flash", srv.URL, time.Second)
		out, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
		assert.Equal(t, "glm-4-flash", got.Model)
		assert.Equal(t, []Message{{Role: RoleUser, Content: "hi"}}, got.Messages)
	})

	t.Run("multipart content keeps only text parts", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":[
				{"type":"text","text":"{\"a\":"},
				{"type":"image_url","image_url":{"url":"x"}},
				{"type":"text","text":"1}"}
			]}}]}`))
		}))
		defer srv.Close()

		out, err := NewOpenAICompleter("k", "m", srv.URL, time.Second).Complete(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, out)
	})

	t.Run("non-2xx becomes APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"bad key"}`))
		}))
		defer srv.Close()

		_, err := NewOpenAICompleter("k", "m", srv.URL, time.Second).Complete(context.Background(), nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "bad key")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewOpenAICompleter("k", "m", srv.URL, time.Second).Complete(context.Background(), nil)
		assert.ErrorIs(t, err, ErrMalformedOutput)
	})
}

func TestNewCompleter_RequiresCredentials(t *testing.T) {
	_, err := NewCompleter(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(context.Background(), Options{BaseURL: "http://x"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(context.Background(), Options{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(context.Background(), Options{Provider: "carrier-pigeon", APIKey: "k"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewCompleter(context.Background(), Options{BaseURL: "http://x", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, c)
	assert.Equal(t, DefaultModel, c.(*OpenAICompleter).model)
}

func TestNewCompleter_TimeoutReachesProvider(t *testing.T) {
	c, err := NewCompleter(context.Background(), Options{BaseURL: "http://x", APIKey: "k", Timeout: 7 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, c.(*OpenAICompleter).client.Timeout)

	c, err = NewCompleter(context.Background(), Options{Provider: "gemini", APIKey: "k", Timeout: 7 * time.Second})
	require.NoError(t, err)
	require.IsType(t, &GeminiCompleter{}, c)
	assert.Equal(t, 7*time.Second, c.(*GeminiCompleter).httpClient.Timeout)

	g, err := NewGeminiCompleter(context.Background(), "k", "gemini-2.0-flash", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, g.httpClient.Timeout)
}

func TestLazyCompleter(t *testing.T) {
	t.Run("configuration error surfaces on every call", func(t *testing.T) {
		lazy := LazyFromOptions(Options{})
		for i := 0; i < 2; i++ {
			_, err := lazy.Complete(context.Background(), nil)
			assert.ErrorIs(t, err, ErrNotConfigured)
		}
	})

	t.Run("constructs once after success", func(t *testing.T) {
		var builds atomic.Int32
		inner := &fakeCompleter{reply: "ok"}
		lazy := NewLazyCompleter(func(context.Context) (ChatCompleter, error) {
			if builds.Add(1) == 1 {
				return nil, ErrNotConfigured
			}
			return inner, nil
		})

		_, err := lazy.Complete(context.Background(), nil)
		require.ErrorIs(t, err, ErrNotConfigured)

		for i := 0; i < 3; i++ {
			out, err := lazy.Complete(context.Background(), nil)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)
		}
		assert.Equal(t, int32(2), builds.Load())
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{name: "plain object", in: `{"a":1}`, want: map[string]any{"a": float64(1)}},
		{name: "fenced", in: "```json\n{\"a\":1}\n```", want: map[string]any{"a": float64(1)}},
		{name: "prose around object", in: "Here you go:\n{\"a\": {\"b\": 2}}\nThanks!", want: map[string]any{"a": map[string]any{"b": float64(2)}}},
		{name: "non-object json is returned as is", in: `[1,2]`, want: []any{float64(1), float64(2)}},
		{name: "empty object", in: ` {} `, want: map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "no json here", "{broken", "} backwards {"} {
		_, err := ExtractJSON(bad)
		assert.ErrorIs(t, err, ErrMalformedOutput, bad)
	}
}

func TestPromptBuilder_BlueprintMessages(t *testing.T) {
	var pb PromptBuilder
	cat := catalog.MustDefault()

	scenario, _ := cat.FindBestScenario(catalog.ModelOffroadLogistics, "向位置X运输资源Y，道路存在不确定损毁风险，要求Z小时内送达。")
	require.NotNil(t, scenario)

	msgs := pb.BuildBlueprintMessages(catalog.ModelOffroadLogistics, "deliver water", scenario)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "default_focus")
	assert.Contains(t, msgs[0].Content, strings.TrimSpace(scenario.Prompt))
	assert.Contains(t, msgs[1].Content, scenario.ID)
	assert.Contains(t, msgs[1].Content, scenario.ReasoningChain)
	assert.Contains(t, msgs[1].Content, "deliver water")

	fallback := pb.BuildBlueprintMessages(catalog.ModelOffroadLogistics, "", nil)
	assert.Contains(t, fallback[0].Content, "fleet_formation")
	assert.Contains(t, fallback[1].Content, "(empty)")

	plain := pb.BuildBlueprintMessages("casualty-rescue", "x", nil)
	assert.Equal(t, blueprintContract, plain[0].Content)
}

func TestGenerator_GenerateBlueprint(t *testing.T) {
	cat := catalog.MustDefault()

	t.Run("parses the reply and reports the matched scenario", func(t *testing.T) {
		fc := &fakeCompleter{reply: "```json\n{\"behavior_tree\":{\"id\":\"r\"},\"node_insights\":{}}\n```"}
		g := NewGenerator(cat, fc)

		res, err := g.GenerateBlueprint(context.Background(), catalog.ModelOffroadLogistics, "向位置X运输资源Y，道路存在不确定损毁风险")
		require.NoError(t, err)
		require.NotNil(t, res.Scenario)
		assert.Equal(t, catalog.ModelOffroadLogistics, res.Scenario.ModelName)
		assert.Greater(t, res.Score, 0.0)
		assert.False(t, res.Shortcut)
		assert.Contains(t, res.Blueprint, "behavior_tree")
		assert.Equal(t, fc.reply, res.RawContent)
		assert.Equal(t, int32(1), fc.calls.Load())
	})

	t.Run("completer errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewGenerator(cat, &fakeCompleter{err: boom}).GenerateBlueprint(context.Background(), "casualty-rescue", "x")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed reply", func(t *testing.T) {
		_, err := NewGenerator(cat, &fakeCompleter{reply: "sorry"}).GenerateBlueprint(context.Background(), "casualty-rescue", "x")
		assert.ErrorIs(t, err, ErrMalformedOutput)
	})

	t.Run("shortcut returns the exemplar without calling the model", func(t *testing.T) {
		fc := &fakeCompleter{err: errors.New("must not be called")}
		g := NewGenerator(cat, fc, WithShortcutThreshold(0.9))

		res, err := g.GenerateBlueprint(context.Background(), catalog.ModelOffroadLogistics, "向位置X运输资源Y，道路存在不确定损毁风险，要求Z小时内送达。")
		require.NoError(t, err)
		assert.True(t, res.Shortcut)
		assert.Equal(t, int32(0), fc.calls.Load())
		obj, ok := res.Blueprint.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "fleet_formation", obj["default_focus"])
	})
}

func TestGenerator_ClassifyModel(t *testing.T) {
	cat := catalog.MustDefault()

	fc := &fakeCompleter{reply: `{"model_name":"casualty-rescue","reason":"people are injured"}`}
	out, err := NewGenerator(cat, fc).ClassifyModel(context.Background(), "two injured people")
	require.NoError(t, err)
	assert.Equal(t, "casualty-rescue", out.ModelName)
	assert.Equal(t, "people are injured", out.Reason)
	for _, s := range cat.Scenarios() {
		assert.Contains(t, fc.messages[0].Content, s.ExampleInput)
	}

	unknown := &fakeCompleter{reply: `{"model_name":"teleportation"}`}
	out, err = NewGenerator(cat, unknown).ClassifyModel(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, cat.Models()[0], out.ModelName)
}

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (c *countingGenerator) GenerateBlueprint(_ context.Context, modelName, task string) (*BlueprintResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &BlueprintResult{Blueprint: map[string]any{"task": task}}, nil
}

func TestCachingGenerator(t *testing.T) {
	t.Run("hits are served from the cache", func(t *testing.T) {
		inner := &countingGenerator{}
		g := NewCachingGenerator(inner, time.Minute)

		first, err := g.GenerateBlueprint(context.Background(), "m", "t")
		require.NoError(t, err)
		second, err := g.GenerateBlueprint(context.Background(), "m", "t")
		require.NoError(t, err)
		assert.Same(t, first, second)
		assert.Equal(t, int32(1), inner.calls.Load())

		_, err = g.GenerateBlueprint(context.Background(), "other", "t")
		require.NoError(t, err)
		assert.Equal(t, int32(2), inner.calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingGenerator{err: errors.New("down")}
		g := NewCachingGenerator(inner, time.Minute)
		_, err := g.GenerateBlueprint(context.Background(), "m", "t")
		assert.Error(t, err)
		_, err = g.GenerateBlueprint(context.Background(), "m", "t")
		assert.Error(t, err)
		assert.Equal(t, int32(2), inner.calls.Load())
	})

	t.Run("zero ttl bypasses the cache", func(t *testing.T) {
		inner := &countingGenerator{}
		g := NewCachingGenerator(inner, 0)
		assert.Same(t, inner, g)
	})
}
