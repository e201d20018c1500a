package email

import (
	"bytes"
	"context"
	texttpl "text/template"

	"github.com/dropDatabas3/caregate/internal/domain/repository"
)

var supportAccessText = texttpl.Must(texttpl.New("support_access").Parse(
	`Hola,

El equipo de soporte de la plataforma solicitó acceso temporal a tu cuenta.

Motivo: {{.Purpose}}

El acceso NO se habilita hasta que lo apruebes con tu firma digital desde el
portal. Si no reconocés esta solicitud, rechazala.

ID de solicitud: {{.ID}}
`))

// SupportNotifier implementa support.Notifier sobre un Sender.
type SupportNotifier struct {
	Sender Sender
}

// SupportAccessRequested notifica al usuario objetivo que una solicitud de
// support access espera su consentimiento.
func (n *SupportNotifier) SupportAccessRequested(_ context.Context, toEmail string, req *repository.SupportRequest) error {
	var buf bytes.Buffer
	if err := supportAccessText.Execute(&buf, req); err != nil {
		return err
	}
	return n.Sender.Send(toEmail, "Solicitud de acceso de soporte pendiente", "", buf.String())
}
