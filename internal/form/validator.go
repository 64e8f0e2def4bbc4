package form

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/leadcapture/internal/locale"
)

const dateLayout = "2006-01-02"

var (
	namePattern   = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s]+$`)
	emailPattern  = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	landlineShape = regexp.MustCompile(`^[1-9][1-9]\d{8}$`)
	mobileShape   = regexp.MustCompile(`^[1-9][1-9]9\d{8}$`)
)

// rule is the ordered tag chain for one field. The first failing tag wins.
type rule struct {
	field Field
	tags  string
}

var rules = []rule{
	{FieldName, "required,min=2,personname"},
	{FieldEmail, "required,leademail"},
	{FieldPhone, "required,ddd_present,ddd,phone_min,landline,mobile,phone_max"},
	{FieldRole, "required,min=2"},
	{FieldBirthDate, "required,datetime=" + dateLayout + ",notfuture,minage=16,maxage=100"},
	{FieldMessage, "required,min=10,max=1000"},
}

var messages = map[Field]map[string]string{
	FieldName: {
		"required":   "Nome é obrigatório",
		"min":        "Nome deve ter pelo menos 2 caracteres",
		"personname": "Nome deve conter apenas letras e espaços",
	},
	FieldEmail: {
		"required":  "E-mail é obrigatório",
		"leademail": "E-mail inválido. Use o formato: exemplo@dominio.com",
	},
	FieldPhone: {
		"required":    "Telefone é obrigatório",
		"ddd_present": "Digite pelo menos o DDD",
		"ddd":         "DDD inválido",
		"phone_min":   "Telefone deve ter pelo menos 10 dígitos",
		"landline":    "Telefone fixo inválido. Use o formato: (11) 1234-5678",
		"mobile":      "Celular inválido. Use o formato: (11) 91234-5678",
		"phone_max":   "Telefone deve ter 10 ou 11 dígitos",
	},
	FieldRole: {
		"required": "Cargo é obrigatório",
		"min":      "Cargo deve ter pelo menos 2 caracteres",
	},
	FieldBirthDate: {
		"required":  "Data de nascimento é obrigatória",
		"datetime":  "Data inválida",
		"notfuture": "Data não pode ser no futuro",
		"minage":    "Idade mínima: 16 anos",
		"maxage":    "Idade máxima: 100 anos",
	},
	FieldMessage: {
		"required": "Mensagem é obrigatória",
		"min":      "Mensagem deve ter pelo menos 10 caracteres",
		"max":      "Mensagem deve ter no máximo 1000 caracteres",
	},
}

// genericMessage is used if a failing tag has no dedicated text.
const genericMessage = "Erro na validação do formulário"

// Validator runs the contact form rules. It holds no state besides its
// clock, so both calling conventions always agree.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides time.Now. Birth dates are interpreted in the location
// of the returned time.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator builds a Validator with the phone, email and age tags
// registered.
func NewValidator(opts ...Option) *Validator {
	val := &Validator{
		v:   validator.New(validator.WithRequiredStructEnabled()),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(val)
	}

	custom := map[string]validator.Func{
		"personname":  matchString(namePattern),
		"leademail":   matchString(emailPattern),
		"ddd_present": func(fl validator.FieldLevel) bool { return len(Digits(fl.Field().String())) >= 2 },
		"ddd":         validAreaCode,
		"phone_min":   func(fl validator.FieldLevel) bool { return len(Digits(fl.Field().String())) >= 10 },
		"landline":    digitShape(10, landlineShape),
		"mobile":      digitShape(11, mobileShape),
		"phone_max":   func(fl validator.FieldLevel) bool { return len(Digits(fl.Field().String())) <= 11 },
		"notfuture":   val.notFuture,
		"minage":      val.minAge,
		"maxage":      val.maxAge,
	}
	for tag, fn := range custom {
		if err := val.v.RegisterValidation(tag, fn); err != nil {
			panic("form: register " + tag + ": " + err.Error())
		}
	}
	return val
}

// Validate checks every field and returns the first failure of each. An
// empty result means the form can be submitted.
func (val *Validator) Validate(in Input) Errors {
	errs := Errors{}
	prepared := prepare(in)
	for _, r := range rules {
		if msg, ok := val.check(r, prepared.Get(r.field)); !ok {
			errs[r.field] = msg
		}
	}
	return errs
}

// FirstError checks fields in display order and stops at the first failure.
func (val *Validator) FirstError(in Input) *FieldError {
	prepared := prepare(in)
	for _, r := range rules {
		if msg, ok := val.check(r, prepared.Get(r.field)); !ok {
			return &FieldError{Field: r.field, Message: msg}
		}
	}
	return nil
}

// ValidateField checks a single field value. It returns the message and
// false when the value is rejected.
func (val *Validator) ValidateField(f Field, value string) (string, bool) {
	var in Input
	if !in.Set(f, value) {
		return genericMessage, false
	}
	prepared := prepare(in)
	for _, r := range rules {
		if r.field == f {
			return val.check(r, prepared.Get(f))
		}
	}
	return genericMessage, false
}

func (val *Validator) check(r rule, value string) (string, bool) {
	err := val.v.Var(value, r.tags)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := messages[r.field][verrs[0].Tag()]; ok {
			return msg, false
		}
	}
	return genericMessage, false
}

// prepare trims and lower-cases ahead of validation. The phone keeps its
// punctuation because the phone tags strip it themselves.
func prepare(in Input) Input {
	return Input{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      strings.TrimSpace(in.Role),
		BirthDate: strings.TrimSpace(in.BirthDate),
		Message:   strings.TrimSpace(in.Message),
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validAreaCode(fl validator.FieldLevel) bool {
	d := Digits(fl.Field().String())
	return len(d) >= 2 && locale.IsKnownAreaCode(d[:2])
}

// digitShape only applies when the phone has exactly n digits.
func digitShape(n int, re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d := Digits(fl.Field().String())
		if len(d) != n {
			return true
		}
		return re.MatchString(d)
	}
}

func (val *Validator) today() time.Time {
	now := val.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (val *Validator) birthDate(fl validator.FieldLevel) (time.Time, bool) {
	d, err := time.ParseInLocation(dateLayout, fl.Field().String(), val.now().Location())
	return d, err == nil
}

func (val *Validator) notFuture(fl validator.FieldLevel) bool {
	birth, ok := val.birthDate(fl)
	return ok && !birth.After(val.today())
}

func (val *Validator) minAge(fl validator.FieldLevel) bool {
	birth, ok := val.birthDate(fl)
	limit, err := strconv.Atoi(fl.Param())
	if !ok || err != nil {
		return false
	}
	return Age(birth, val.today()) >= limit
}

// maxAge accepts a visitor up to and including the day they turn the limit.
func (val *Validator) maxAge(fl validator.FieldLevel) bool {
	birth, ok := val.birthDate(fl)
	limit, err := strconv.Atoi(fl.Param())
	if !ok || err != nil {
		return false
	}
	return !val.today().After(birth.AddDate(limit, 0, 0))
}

// Age returns completed years between birth and today, counting a birthday
// as passed only once its month and day are reached.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}
