package apiclient

// Session поставляет bearer-токен для запросов к API.
// Отсутствие токена означает неаутентифицированный вызов.
type Session interface {
	Token() (string, bool)
}

// StaticSession отдаёт фиксированный токен.
type StaticSession string

// Token возвращает токен, если он непустой.
func (s StaticSession) Token() (string, bool) {
	return string(s), s != ""
}

// NoSession не прикладывает заголовок Authorization.
var NoSession Session = StaticSession("")
