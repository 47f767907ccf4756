package notify

import (
	"fmt"
)

// Email is a rendered notification email.
type Email struct {
	Subject string
	HTML    string
}

// NewAssignmentEmail renders the email sent when a reader is assigned a meter.
func NewAssignmentEmail(meterNumber, location string) Email {
	return Email{
		Subject: fmt.Sprintf("New Meter Assignment: %s", meterNumber),
		HTML: fmt.Sprintf(`<h2>New Meter Assignment</h2>
<p>You have been assigned to read meter <strong>%s</strong> at <strong>%s</strong>.</p>
<p>Please log in to your dashboard to view details and submit readings.</p>`, meterNumber, location),
	}
}

// ReadingDueEmail renders the email sent when a scheduled reading is due.
func ReadingDueEmail(meterNumber, dueDate string) Email {
	return Email{
		Subject: fmt.Sprintf("Reading Due: %s", meterNumber),
		HTML: fmt.Sprintf(`<h2>Meter Reading Due</h2>
<p>The reading for meter <strong>%s</strong> is due on <strong>%s</strong>.</p>
<p>Please submit the reading as soon as possible.</p>`, meterNumber, dueDate),
	}
}

// ReadingMissedEmail renders the email sent when a meter's reading is overdue.
func ReadingMissedEmail(meterNumber string, daysOverdue int) Email {
	return Email{
		Subject: fmt.Sprintf("Overdue Reading: %s", meterNumber),
		HTML: fmt.Sprintf(`<h2>Overdue Meter Reading</h2>
<p>The reading for meter <strong>%s</strong> is <strong>%d days</strong> overdue.</p>
<p>Please submit the reading immediately.</p>`, meterNumber, daysOverdue),
	}
}
