package collection

import (
	"time"
)

func createEvent(
	eventType SearchEventType,
	operation string,
	collectionName string,
	searchID *string,
	filter *string,
	count *int,
	err *string,
	startTime time.Time,
) SearchEvent {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return SearchEvent{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: collectionName,
		SearchID:   searchID,
		Filter:     filter,
		Count:      count,
		Error:      err,
		Duration:   duration,
	}
}
