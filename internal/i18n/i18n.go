package i18n

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is the default language locale (English).
	DefaultLocale = "en"
	// AcceptLanguageHeader is the HTTP header name for language preference.
	AcceptLanguageHeader = "Accept-Language"
)

// supportedLocales lists the message locales in the order of supportedTags.
var (
	supportedLocales = []string{"en", "pt", "nl"}
	supportedTags    = []language.Tag{language.English, language.Portuguese, language.Dutch}
	localeMatcher    = language.NewMatcher(supportedTags)
)

var (
	// defaultTranslator is the singleton translator instance.
	defaultTranslator *Translator
	translatorOnce    sync.Once
)

// Translator handles message translation for different locales.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a new translator with the default messages.
func NewTranslator() *Translator {
	return &Translator{
		messages: defaultMessages,
	}
}

// GetTranslator returns the default singleton translator instance.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Lookup returns the message for key in locale, falling back to DefaultLocale.
// ok is false when no locale has the key.
func (t *Translator) Lookup(key, locale string) (msg string, ok bool) {
	if locale == "" {
		locale = DefaultLocale
	}
	if localeMessages, found := t.messages[locale]; found {
		if msg, ok = localeMessages[key]; ok {
			return msg, true
		}
	}
	msg, ok = t.messages[DefaultLocale][key]
	return msg, ok
}

// Translate returns the translated message for the given key and locale.
// Unknown keys are returned unchanged.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.Lookup(key, locale); ok {
		return msg
	}
	return key
}

// TranslateCode translates a reconciliation error code, returning fallback
// when the code has no translation.
func (t *Translator) TranslateCode(code, locale, fallback string) string {
	if msg, ok := t.Lookup(KeyForCode(code), locale); ok {
		return msg
	}
	return fallback
}

// GetLocale returns the supported locale that best matches the request's
// Accept-Language header.
func GetLocale(c *gin.Context) string {
	return MatchLocale(c.GetHeader(AcceptLanguageHeader))
}

// MatchLocale picks the supported locale closest to an Accept-Language value,
// honouring quality weights. Unparseable or unmatched values yield DefaultLocale.
func MatchLocale(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return supportedLocales[idx]
}

var defaultMessages = map[string]map[string]string{
	"en": {
		"error.invalid_request":          "Invalid request",
		"error.invalid_request_body":     "Invalid request body",
		"error.internal_error":           "An unexpected error occurred",
		"error.api_key_required":         "API key is required",
		"error.invalid_api_key":          "Invalid API key",
		"error.not_found":                "Not found",
		"error.rate_limit_exceeded":      "Too many requests, please try again later",
		"error.timeout":                  "The request took too long to complete",
		"error.batch_too_large":          "A batch may contain at most 25 prescriptions",
		"error.unknown_drug":             "The package references a medication that is not in the catalog",
		"error.service_unavailable":      "The service is not ready",
		"error.validation_failed":        "The prescription request is invalid",
		"error.structured_dose_required": "Dosing instructions must be structured because no dosing parser is available",
		"error.days_supply_required":     "Days supply is required when the dosing instructions have no duration",
		"error.duration_out_of_range":    "The duration stated in the dosing instructions must be between 1 and 365 days",
		"error.invalid_package":          "The package identifier is unknown or no longer active",
		"error.drug_not_found":           "The medication could not be identified",
		"error.no_candidates":            "No matching packages found for this medication",
		"error.no_active_packages":       "No active packages are available for this medication",
		"error.external_service_error":   "A required service is temporarily unavailable, please retry",
	},
	"pt": {
		"error.invalid_request":          "Requisição inválida",
		"error.invalid_request_body":     "Corpo da requisição inválido",
		"error.internal_error":           "Ocorreu um erro inesperado",
		"error.api_key_required":         "Chave de API é obrigatória",
		"error.invalid_api_key":          "Chave de API inválida",
		"error.not_found":                "Não encontrado",
		"error.rate_limit_exceeded":      "Muitas requisições, tente novamente mais tarde",
		"error.timeout":                  "A requisição demorou demais para ser concluída",
		"error.batch_too_large":          "Um lote pode conter no máximo 25 prescrições",
		"error.unknown_drug":             "A embalagem referencia um medicamento que não está no catálogo",
		"error.service_unavailable":      "O serviço não está pronto",
		"error.validation_failed":        "A requisição de prescrição é inválida",
		"error.structured_dose_required": "A posologia deve ser estruturada porque nenhum interpretador está disponível",
		"error.days_supply_required":     "Os dias de tratamento são obrigatórios quando a posologia não informa a duração",
		"error.duration_out_of_range":    "A duração indicada na posologia deve estar entre 1 e 365 dias",
		"error.invalid_package":          "O identificador da embalagem é desconhecido ou está inativo",
		"error.drug_not_found":           "O medicamento não pôde ser identificado",
		"error.no_candidates":            "Nenhuma embalagem encontrada para este medicamento",
		"error.no_active_packages":       "Não há embalagens ativas para este medicamento",
		"error.external_service_error":   "Um serviço necessário está temporariamente indisponível, tente novamente",
	},
	"nl": {
		"error.invalid_request":          "Ongeldig verzoek",
		"error.invalid_request_body":     "Ongeldige aanvraag body",
		"error.internal_error":           "Er is een onverwachte fout opgetreden",
		"error.api_key_required":         "API-sleutel is vereist",
		"error.invalid_api_key":          "Ongeldige API-sleutel",
		"error.not_found":                "Niet gevonden",
		"error.rate_limit_exceeded":      "Te veel verzoeken, probeer het later opnieuw",
		"error.timeout":                  "Het verzoek duurde te lang",
		"error.batch_too_large":          "Een batch mag maximaal 25 recepten bevatten",
		"error.unknown_drug":             "De verpakking verwijst naar een geneesmiddel dat niet in de catalogus staat",
		"error.service_unavailable":      "De dienst is niet gereed",
		"error.validation_failed":        "Het receptverzoek is ongeldig",
		"error.structured_dose_required": "De dosering moet gestructureerd zijn omdat er geen doseringsparser beschikbaar is",
		"error.days_supply_required":     "Het aantal dagen is vereist wanneer de dosering geen duur vermeldt",
		"error.duration_out_of_range":    "De duur in de dosering moet tussen 1 en 365 dagen liggen",
		"error.invalid_package":          "De verpakkingscode is onbekend of niet meer actief",
		"error.drug_not_found":           "Het geneesmiddel kon niet worden geïdentificeerd",
		"error.no_candidates":            "Geen passende verpakkingen gevonden voor dit geneesmiddel",
		"error.no_active_packages":       "Er zijn geen actieve verpakkingen voor dit geneesmiddel",
		"error.external_service_error":   "Een vereiste dienst is tijdelijk niet beschikbaar, probeer het opnieuw",
	},
}
