package models

import (
	"strings"
	"text/template"
)

// responseLetter is the Dutch acknowledgement letter (article 15 AVG). Only
// the subject name is filled in; the bracketed placeholders are left for the
// operator.
var responseLetter = template.Must(template.New("response_letter").Parse(`Geachte {{.SubjectName}},

Hierbij bevestigen wij de ontvangst van uw verzoek tot inzage in uw persoonsgegevens conform artikel 15 van de Algemene Verordening Gegevensbescherming (AVG).

Wij hebben uw verzoek in behandeling genomen en zullen u binnen de wettelijke termijn van 30 dagen een overzicht verstrekken van de persoonsgegevens die wij van u verwerken.

Indien wij uw verzoek niet kunnen inwilligen, zullen wij u hiervan met opgave van redenen in kennis stellen.

Met vriendelijke groet,
[Uw naam]
[Bedrijfsnaam]`))

// RenderResponseLetter fills the acknowledgement letter for subjectName.
func RenderResponseLetter(subjectName string) (string, error) {
	var b strings.Builder
	if err := responseLetter.Execute(&b, struct{ SubjectName string }{subjectName}); err != nil {
		return "", err
	}
	return b.String(), nil
}
