package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/julianshen/docsynth/internal/config"
)

const (
	anthropicName    = "anthropic"
	openAIName       = "openai"
	anthropicBaseURL = "https://api.anthropic.com"
)

// ProviderConstructor builds a provider for one endpoint. extraHeaders are
// sent on every request and may be nil.
type ProviderConstructor func(baseURL, apiKey string, extraHeaders map[string]string) LLMProvider

var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderConstructor{}
)

// RegisterProvider makes a wire protocol available to NewProvider. The
// protocol packages call it from init.
func RegisterProvider(name string, constructor ProviderConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = constructor
}

func lookup(name string) (ProviderConstructor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%s protocol not registered (missing import of provider/%s?)", name, name)
	}
	return c, nil
}

// NewProvider returns the provider selected by cfg.Provider.Default. The
// name "anthropic" (or an empty name) selects the Messages API; any other
// name must match an [[provider.openai]] entry, whose key defaults to the
// environment variable derived by APIKeyEnv.
func NewProvider(cfg *config.Config) (LLMProvider, error) {
	name := cfg.Provider.Default
	if name == "" || name == anthropicName {
		return newAnthropic(cfg.Provider.Anthropic)
	}

	oc, ok := findCompatible(cfg.Provider.OpenAI, name)
	if !ok {
		return nil, unknownProvider(name, cfg.Provider.OpenAI)
	}
	return newCompatible(oc)
}

func newAnthropic(ac config.AnthropicProviderConfig) (LLMProvider, error) {
	construct, err := lookup(anthropicName)
	if err != nil {
		return nil, err
	}
	key, err := config.ResolveAPIKey(ac.APIKeySource, ac.APIKey, APIKeyEnv(anthropicName))
	if err != nil {
		return nil, fmt.Errorf("anthropic api key: %w", err)
	}
	baseURL := ac.BaseURL
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return construct(baseURL, key, nil), nil
}

func newCompatible(oc config.OpenAICompatibleConfig) (LLMProvider, error) {
	if oc.BaseURL == "" {
		return nil, fmt.Errorf("provider %q: base_url is required", oc.Name)
	}
	construct, err := lookup(openAIName)
	if err != nil {
		return nil, err
	}
	key, err := config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, APIKeyEnv(oc.Name))
	if err != nil {
		return nil, fmt.Errorf("%s api key: %w", oc.Name, err)
	}
	return construct(oc.BaseURL, key, oc.ExtraHeaders), nil
}

func findCompatible(entries []config.OpenAICompatibleConfig, name string) (config.OpenAICompatibleConfig, bool) {
	for _, oc := range entries {
		if oc.Name == name {
			return oc, true
		}
	}
	return config.OpenAICompatibleConfig{}, false
}

func unknownProvider(name string, entries []config.OpenAICompatibleConfig) error {
	names := []string{anthropicName}
	for _, oc := range entries {
		names = append(names, oc.Name)
	}
	sort.Strings(names)
	return fmt.Errorf("unknown provider %q (configured: %s)", name, strings.Join(names, ", "))
}

// APIKeyEnv returns the environment variable consulted for a provider's key:
// the upper-cased name with every non-alphanumeric rune replaced by '_',
// followed by _API_KEY. "together-ai" maps to TOGETHER_AI_API_KEY.
func APIKeyEnv(name string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, name)
	return mapped + "_API_KEY"
}
