package mail

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers transactional mail. Callers that treat delivery as
// best-effort are expected to log and swallow the returned error.
type Sender interface {
	SendWelcomeEmail(to string) error
	SendResetCodeEmail(to, code string) error
	SendPaymentSuccessEmail(to string, payment PaymentDetails, listing ListingDetails, guests int, start, end time.Time) error
}

type PaymentDetails struct {
	OrderID   string
	PaymentID string
	Amount    float64
}

type ListingDetails struct {
	Name     string
	Location string
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *logrus.Logger
}

func NewMailer(host string, port int, email, password string, logger *logrus.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, email, password),
		from:   email,
		logger: logger,
	}
}

func (m *Mailer) SendWelcomeEmail(to string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Welcome to RoyalRetreats!")
	message.SetBody("text/plain", "Welcome to RoyalRetreats! Your account has been created. Start exploring stays and plan your next trip.")

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.WithError(err).Error("Failed to send welcome mail")
		return err
	}
	return nil
}

func (m *Mailer) SendResetCodeEmail(to, code string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Password Reset OTP - RoyalRetreats")

	bodyString := fmt.Sprintf("Your OTP for resetting your RoyalRetreats password is:\n%s\n\nIt expires in 1 hour.", code)
	message.SetBody("text/plain", bodyString)

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.WithError(err).Error("Failed to send reset OTP mail")
		return err
	}
	return nil
}

func (m *Mailer) SendPaymentSuccessEmail(to string, payment PaymentDetails, listing ListingDetails, guests int, start, end time.Time) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Payment Successful - Booking Confirmation")

	textBody := fmt.Sprintf(`Your payment for the booking has been successful. Here are the details:
Order ID: %s
Payment ID: %s
Amount: %.2f`, payment.OrderID, payment.PaymentID, payment.Amount)
	message.SetBody("text/plain", textBody)

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
  <h2 style="color: #4CAF50;">Booking Payment Successful</h2>
  <p>Hello,</p>
  <p>We are pleased to inform you that your payment for the booking has been successfully completed. Below are your booking and payment details:</p>

  <h3 style="color: #333;">Booking Details:</h3>
  <ul>
    <li><strong>Stay:</strong> %s</li>
    <li><strong>Location:</strong> %s</li>
    <li><strong>Guests:</strong> %d guest(s)</li>
    <li><strong>Booking Dates:</strong> %s to %s</li>
  </ul>

  <h3 style="color: #333;">Payment Details:</h3>
  <ul>
    <li><strong>Order ID:</strong> %s</li>
    <li><strong>Payment ID:</strong> %s</li>
    <li><strong>Amount Paid:</strong> Rs. %.2f INR</li>
    <li><strong>Payment Status:</strong> Successful</li>
  </ul>

  <p>This email confirms that your booking is now complete, and we look forward to hosting you soon!</p>
  <p>Thank you for choosing <strong>RoyalRetreats</strong>!</p>
</div>`,
		listing.Name, listing.Location, guests,
		start.Format("2006-01-02"), end.Format("2006-01-02"),
		payment.OrderID, payment.PaymentID, payment.Amount)
	message.AddAlternative("text/html", htmlBody)

	if err := m.dialer.DialAndSend(message); err != nil {
		m.logger.WithError(err).Error("Failed to send payment success mail")
		return err
	}
	return nil
}
