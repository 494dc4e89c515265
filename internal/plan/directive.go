package plan

// DirectiveKey identifies a global plan directive after key normalisation.
type DirectiveKey string

const (
	KeyPlatform   DirectiveKey = "platform"
	KeyDuration   DirectiveKey = "duration"
	KeyAspect     DirectiveKey = "aspect"
	KeyLanguage   DirectiveKey = "language"
	KeyVoice      DirectiveKey = "voice"
	KeyVoiceID    DirectiveKey = "voiceid"
	KeyMusic      DirectiveKey = "music"
	KeyBrand      DirectiveKey = "brand"
	KeyBrandURL   DirectiveKey = "brandurl"
	KeyLogo       DirectiveKey = "logo"
	KeyTransition DirectiveKey = "transition"
	KeyTitle      DirectiveKey = "title"
)

// Directive is one global `Key: Value` line resolved into a typed value.
// Concrete types are the *Directive structs in this file; keys the tokenizer
// does not know become ExtraDirective.
type Directive interface {
	Key() DirectiveKey
	directive()
}

type PlatformDirective struct{ Platform string }

type DurationDirective struct {
	Millis int64
	Raw    string
}

type AspectDirective struct{ Ratio string }

type LanguageDirective struct{ Code string }

// VoiceDirective carries the voice style chosen by the creative vocabulary.
type VoiceDirective struct{ Style string }

type VoiceIDDirective struct{ ID string }

type MusicDirective struct{ Mood string }

// BrandDirective holds the brand name. A URL written inline
// ("Acme - https://acme.io") is split off into URL.
type BrandDirective struct {
	Name string
	URL  string
}

type BrandURLDirective struct{ URL string }

type LogoDirective struct{ Ref string }

type TransitionDirective struct{ Name string }

type TitleDirective struct{ Title string }

// ExtraDirective preserves an unrecognised key verbatim.
type ExtraDirective struct {
	Name  string
	Value string
}

func (PlatformDirective) Key() DirectiveKey { return KeyPlatform }
func (DurationDirective) Key() DirectiveKey { return KeyDuration }
func (AspectDirective) Key() DirectiveKey { return KeyAspect }
func (LanguageDirective) Key() DirectiveKey { return KeyLanguage }
func (VoiceDirective) Key() DirectiveKey { return KeyVoice }
func (VoiceIDDirective) Key() DirectiveKey { return KeyVoiceID }
func (MusicDirective) Key() DirectiveKey { return KeyMusic }
func (BrandDirective) Key() DirectiveKey { return KeyBrand }
func (BrandURLDirective) Key() DirectiveKey { return KeyBrandURL }
func (LogoDirective) Key() DirectiveKey { return KeyLogo }
func (TransitionDirective) Key() DirectiveKey { return KeyTransition }
func (TitleDirective) Key() DirectiveKey { return KeyTitle }
func (e ExtraDirective) Key() DirectiveKey { return DirectiveKey(e.Name) }

func (PlatformDirective) directive() {}
func (DurationDirective) directive() {}
func (AspectDirective) directive() {}
func (LanguageDirective) directive() {}
func (VoiceDirective) directive() {}
func (VoiceIDDirective) directive() {}
func (MusicDirective) directive() {}
func (BrandDirective) directive() {}
func (BrandURLDirective) directive() {}
func (LogoDirective) directive() {}
func (TransitionDirective) directive() {}
func (TitleDirective) directive() {}
func (ExtraDirective) directive() {}

// Globals is the folded view of all directives. Later directives override
// earlier ones with the same key.
type Globals struct {
	Platform   string
	DurationMs int64
	Aspect     string
	Language   string
	Voice      string
	VoiceID    string
	Music      string
	Brand      string
	BrandURL   string
	Logo       string
	Transition string
	Title      string
	Extras     map[string]string
}

// Fold applies directives in order.
func Fold(directives []Directive) Globals {
	g := Globals{Extras: map[string]string{}}
	for _, d := range directives {
		switch v := d.(type) {
		case PlatformDirective:
			g.Platform = v.Platform
		case DurationDirective:
			g.DurationMs = v.Millis
		case AspectDirective:
			g.Aspect = v.Ratio
		case LanguageDirective:
			g.Language = v.Code
		case VoiceDirective:
			g.Voice = v.Style
		case VoiceIDDirective:
			g.VoiceID = v.ID
		case MusicDirective:
			g.Music = v.Mood
		case BrandDirective:
			g.Brand = v.Name
			if v.URL != "" {
				g.BrandURL = v.URL
			}
		case BrandURLDirective:
			g.BrandURL = v.URL
		case LogoDirective:
			g.Logo = v.Ref
		case TransitionDirective:
			g.Transition = v.Name
		case TitleDirective:
			g.Title = v.Title
		case ExtraDirective:
			g.Extras[v.Name] = v.Value
		}
	}
	return g
}
