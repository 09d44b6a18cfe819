package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"liveshop/internal/domain"
)

// SMTPMailer sends order mail over plain SMTP with AUTH. The buyer gets a
// confirmation, the admin address a notification.
type SMTPMailer struct {
	addr      string
	host      string
	from      string
	password  string
	adminAddr string
}

func NewSMTPMailer(host string, port int, user, password, adminAddr string) *SMTPMailer {
	return &SMTPMailer{
		addr:      fmt.Sprintf("%s:%d", host, port),
		host:      host,
		from:      user,
		password:  password,
		adminAddr: adminAddr,
	}
}

func (m *SMTPMailer) SendShippingConfirmation(ctx context.Context, info *domain.ShippingInfo) error {
	confirmation := fmt.Sprintf("Thank you %s! Your order will be shipped to: %s, %s, %s",
		info.Name, info.Address, info.City, info.Zip)
	if err := m.send(ctx, info.Email, "Order Confirmation", confirmation); err != nil {
		return err
	}

	notification := fmt.Sprintf("Order for %s\nAddress: %s, %s, %s\nEmail: %s",
		info.Name, info.Address, info.City, info.Zip, info.Email)
	return m.send(ctx, m.adminAddr, "New Order Shipping Info", notification)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg))
}
