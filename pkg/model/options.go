package model

import "time"

// Defaults applied when a form does not configure a value.
const (
	DefaultDebounceDelay    = 250 * time.Millisecond
	DefaultCurrencyDecimals = 2
	DefaultLocale           = "tr"
)

// Options is the per-form behaviour.
type Options struct {
	// DebounceDelay is the quiet period after the last input event before the
	// field validates.
	DebounceDelay    time.Duration
	ValidateOnInput  bool
	ValidateOnBlur   bool
	ShowSuccessState bool
	FormatOnInput    bool
	Locale           string
	CurrencyDecimals int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DebounceDelay:    DefaultDebounceDelay,
		ValidateOnInput:  true,
		ValidateOnBlur:   true,
		ShowSuccessState: true,
		FormatOnInput:    true,
		Locale:           DefaultLocale,
		CurrencyDecimals: DefaultCurrencyDecimals,
	}
}

// OptionsConfig is the serialised form of Options. Unset values keep the base
// value in Apply.
type OptionsConfig struct {
	DebounceDelayMs  *int   `json:"debounceDelayMs,omitempty" yaml:"debounceDelayMs,omitempty"`
	ValidateOnInput  *bool  `json:"validateOnInput,omitempty" yaml:"validateOnInput,omitempty"`
	ValidateOnBlur   *bool  `json:"validateOnBlur,omitempty" yaml:"validateOnBlur,omitempty"`
	ShowSuccessState *bool  `json:"showSuccessState,omitempty" yaml:"showSuccessState,omitempty"`
	FormatOnInput    *bool  `json:"formatOnInput,omitempty" yaml:"formatOnInput,omitempty"`
	Locale           string `json:"locale,omitempty" yaml:"locale,omitempty"`
	CurrencyDecimals *int   `json:"currencyDecimals,omitempty" yaml:"currencyDecimals,omitempty"`
}

// Apply overlays the configured values on base.
func (c OptionsConfig) Apply(base Options) Options {
	out := base
	if c.DebounceDelayMs != nil && *c.DebounceDelayMs >= 0 {
		out.DebounceDelay = time.Duration(*c.DebounceDelayMs) * time.Millisecond
	}
	if c.ValidateOnInput != nil {
		out.ValidateOnInput = *c.ValidateOnInput
	}
	if c.ValidateOnBlur != nil {
		out.ValidateOnBlur = *c.ValidateOnBlur
	}
	if c.ShowSuccessState != nil {
		out.ShowSuccessState = *c.ShowSuccessState
	}
	if c.FormatOnInput != nil {
		out.FormatOnInput = *c.FormatOnInput
	}
	if c.Locale != "" {
		out.Locale = c.Locale
	}
	if c.CurrencyDecimals != nil && *c.CurrencyDecimals >= 0 {
		out.CurrencyDecimals = *c.CurrencyDecimals
	}
	return out
}

// Merge overlays other on c; values set in other win.
func (c OptionsConfig) Merge(other OptionsConfig) OptionsConfig {
	out := c
	if other.DebounceDelayMs != nil {
		out.DebounceDelayMs = other.DebounceDelayMs
	}
	if other.ValidateOnInput != nil {
		out.ValidateOnInput = other.ValidateOnInput
	}
	if other.ValidateOnBlur != nil {
		out.ValidateOnBlur = other.ValidateOnBlur
	}
	if other.ShowSuccessState != nil {
		out.ShowSuccessState = other.ShowSuccessState
	}
	if other.FormatOnInput != nil {
		out.FormatOnInput = other.FormatOnInput
	}
	if other.Locale != "" {
		out.Locale = other.Locale
	}
	if other.CurrencyDecimals != nil {
		out.CurrencyDecimals = other.CurrencyDecimals
	}
	return out
}
