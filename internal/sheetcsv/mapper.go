package sheetcsv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tiketnow/models"
)

// Column layout of the purchases sheet ("Hoja 1"). The sheet writer and this
// reader share these positions as a fixed contract; reordering columns in
// the sheet breaks both sides silently.
const (
	purchaseColTimestamp = iota
	purchaseColFirstName
	purchaseColLastName
	purchaseColPhone
	purchaseColEmail
	purchaseColTicketQty
	purchaseColCoolerQty
	purchaseColPaymentMethod
	purchaseColTotal
	purchaseColStatus
	purchaseColEventID
	purchaseColEventName

	purchaseMinCols = 10
)

// Column layout of the events sheet ("Hoja 2").
const (
	eventColID = iota
	eventColName
	eventColDate
	eventColHour
	eventColDescription
	eventColLocation
	eventColImage
	eventColTicketPrice
	eventColVipPrice
	eventColCapacity
	eventColCreatedBy
	eventColCreatedAt
	eventColStatus

	eventMinCols = 12
)

// MapPurchases turns decoded rows into purchases. Row 0 is the header and is
// skipped. Rows that are too short or have an empty first-name cell are
// dropped entirely; individual cells that fail to parse fall back to zero
// values so one malformed row never aborts a load. Output is reversed so the
// most recently appended sheet rows come first.
func MapPurchases(rows [][]string) []models.Purchase {
	purchases := make([]models.Purchase, 0, len(rows))

	for i := 1; i < len(rows); i++ {
		cols := rows[i]
		if len(cols) < purchaseMinCols || strings.TrimSpace(cell(cols, purchaseColFirstName)) == "" {
			continue
		}
		purchases = append(purchases, models.Purchase{
			ID: fmt.Sprintf("%d-%s-%s-%s",
				i,
				cell(cols, purchaseColFirstName),
				cell(cols, purchaseColLastName),
				cell(cols, purchaseColTimestamp)),
			Timestamp:     cell(cols, purchaseColTimestamp),
			FirstName:     cell(cols, purchaseColFirstName),
			LastName:      cell(cols, purchaseColLastName),
			Phone:         cell(cols, purchaseColPhone),
			Email:         cell(cols, purchaseColEmail),
			TicketQty:     parseInt(cell(cols, purchaseColTicketQty)),
			CoolerQty:     parseInt(cell(cols, purchaseColCoolerQty)),
			PaymentMethod: cell(cols, purchaseColPaymentMethod),
			Total:         parseAmount(cell(cols, purchaseColTotal)),
			Status:        models.ParseStatus(cell(cols, purchaseColStatus)),
			EventID:       cell(cols, purchaseColEventID),
			EventName:     cell(cols, purchaseColEventName),
		})
	}

	reverse(purchases)
	return purchases
}

// MapEvents turns decoded rows into events, with the same skip and
// defaulting rules as MapPurchases (the must-have column is the name).
// An event row without an identifier gets a deterministic row-derived one.
func MapEvents(rows [][]string) []models.Event {
	events := make([]models.Event, 0, len(rows))

	for i := 1; i < len(rows); i++ {
		cols := rows[i]
		if len(cols) < eventMinCols || strings.TrimSpace(cell(cols, eventColName)) == "" {
			continue
		}
		id := cell(cols, eventColID)
		if id == "" {
			id = fmt.Sprintf("row-%d", i)
		}
		events = append(events, models.Event{
			ID:          id,
			Name:        cell(cols, eventColName),
			Date:        cell(cols, eventColDate),
			Hour:        cell(cols, eventColHour),
			Description: cell(cols, eventColDescription),
			Location:    cell(cols, eventColLocation),
			Image:       cell(cols, eventColImage),
			TicketPrice: parseAmount(cell(cols, eventColTicketPrice)),
			VipPrice:    parseAmount(cell(cols, eventColVipPrice)),
			Capacity:    parseInt(cell(cols, eventColCapacity)),
			CreatedBy:   cell(cols, eventColCreatedBy),
			CreatedAt:   cell(cols, eventColCreatedAt),
			Status:      models.ParseEventStatus(cell(cols, eventColStatus)),
		})
	}

	reverse(events)
	return events
}

func cell(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
