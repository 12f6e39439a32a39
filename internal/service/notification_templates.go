package service

import (
	"bytes"
	"text/template"
)

const (
	absenceWarningSubjectFormat = "Atenção – Você está com %d%% de faltas nas sessões"
	absenceCriticalSubject      = "Atenção – Seu compromisso com a corrente está em risco"
)

var absenceWarningTemplate = template.Must(template.New("absence_warning").Parse(`Olá, {{.Name}}.

Aqui é a Direção da {{.House}}.

Ao acompanharmos suas presenças na corrente, identificamos que você está com aproximadamente {{.Percent}}% de faltas nas sessões, considerando tanto faltas quanto faltas justificadas.

Entendemos que nem sempre é possível estar presente em todas as giras. Justificativas existem e são compreendidas. Porém, mesmo as faltas justificadas impactam o trabalho da Casa e o equilíbrio da corrente.

Este e-mail é um sinal de alerta, não de punição. É o momento ideal para você refletir com carinho sobre sua disponibilidade, seu compromisso e a importância da sua presença regular nas sessões.

Se estiver passando por alguma dificuldade pessoal, de saúde ou estrutura, pedimos que nos procure. A Direção está à disposição para ouvir, orientar e ajustar o que for possível.

Que a espiritualidade amiga fortaleça seu caminho e suas decisões.
{{.House}}
`))

var absenceCriticalTemplate = template.Must(template.New("absence_critical").Parse(`Olá, {{.Name}}.

Aqui é a Direção da {{.House}}.

Ao avaliarmos a sua caminhada junto à corrente mediúnica, verificamos que você alcançou aproximadamente {{.Percent}}% de faltas nas sessões, considerando tanto faltas quanto faltas justificadas.

Sabemos que a vida física traz desafios, imprevistos e responsabilidades. Ao mesmo tempo, sua presença na corrente é parte do compromisso assumido com a espiritualidade, com a Casa e com aqueles que buscam amparo através do seu trabalho mediúnico.

Este é um alerta importante: você está muito acima do limite saudável de faltas e corre risco de afastamento da corrente.

Pedimos, com respeito e carinho, que você procure a Direção espiritual da Casa com urgência, para conversarmos pessoalmente sobre o momento, as dificuldades e os melhores encaminhamentos.

Que os Guias de Luz possam te orientar e fortalecer suas escolhas.
{{.House}}
`))

var sessionReminderTemplate = template.Must(template.New("session_reminder").Parse(`Olá, {{.Name}}.

Este é um lembrete fraterno da {{.House}}.

Daqui a {{.DaysAhead}} dias, em {{.Date}}, teremos uma sessão de {{.Kind}}.
{{if .Leader}}
Dirigente espiritual: {{.Leader}}
{{end}}
A sua presença na corrente é parte essencial do trabalho espiritual da Casa e do compromisso assumido com seus Guias e Orixás.

Caso você já saiba que não poderá comparecer a esta sessão, pedimos que, sempre que possível, avise a Direção com antecedência, para que possamos nos organizar melhor e preservar o equilíbrio da corrente.

Que a espiritualidade amiga te acompanhe e fortaleça suas decisões.
{{.House}}
`))

type absenceMessage struct {
	Name    string
	House   string
	Percent int
}

type reminderMessage struct {
	Name      string
	House     string
	Date      string
	Kind      string
	Leader    string
	DaysAhead int
}

func renderTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
