package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/payrolltest"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/pkg/logger"
)

func samplePayment() *domain.Payment {
	return &domain.Payment{
		ID:            "pay-1",
		RequestID:     "req-1",
		EmployeeEmail: "alice@co.com",
		EmployeeName:  "Alice",
		Amount:        2500,
		Month:         3,
		Year:          2024,
		TransactionID: "STRIPE_1_ABC",
		PaymentMethod: domain.MethodStripeCheckout,
		ProcessedBy:   domain.ActorAdminConfirmation,
		PaymentDate:   time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC),
	}
}

func TestPublishPaymentRecorded(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event PaymentRecordedEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypePaymentRecorded || event.TransactionID != "STRIPE_1_ABC" || event.Month != 3 {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, nil)
	require.NoError(t, p.PublishPaymentRecorded(context.Background(), samplePayment()))
	require.NoError(t, p.Close())
}

func TestPublishPaymentRecordedFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, nil)
	err := p.PublishPaymentRecorded(context.Background(), samplePayment())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func eventMessage(t *testing.T, eventType string, event PaymentRecordedEvent) *sarama.ConsumerMessage {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	msg := &sarama.ConsumerMessage{Topic: TopicPaymentRecorded, Value: value}
	if eventType != "" {
		msg.Headers = []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(eventType)}}
	}
	return msg
}

func TestHandleMessageDispatch(t *testing.T) {
	c := newConsumer(nil, nil, "test", []string{TopicPaymentRecorded})
	var got []PaymentRecordedEvent
	c.RegisterHandler(EventTypePaymentRecorded, func(_ context.Context, e PaymentRecordedEvent) error {
		got = append(got, e)
		return nil
	})
	h := &consumerGroupHandler{consumer: c}
	ctx := context.Background()

	require.NoError(t, h.handleMessage(ctx, eventMessage(t, EventTypePaymentRecorded, PaymentRecordedEvent{TransactionID: "TXN_1"})))
	require.Len(t, got, 1)
	assert.Equal(t, "TXN_1", got[0].TransactionID)

	assert.Error(t, h.handleMessage(ctx, eventMessage(t, "", PaymentRecordedEvent{})))
	assert.Error(t, h.handleMessage(ctx, eventMessage(t, "payroll.unknown", PaymentRecordedEvent{})))

	bad := eventMessage(t, EventTypePaymentRecorded, PaymentRecordedEvent{})
	bad.Value = []byte("{")
	assert.Error(t, h.handleMessage(ctx, bad))
	assert.Len(t, got, 1)
}

type claimSession struct {
	sarama.ConsumerGroupSession
	marked []int64
}

func (s *claimSession) Context() context.Context { return context.Background() }

func (s *claimSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type claimStream struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c claimStream) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func TestConsumeClaimLogsAndSkipsBadMessages(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("payroll-test", &buf)

	c := newConsumer(nil, nil, "test", []string{TopicPaymentRecorded})
	handled := 0
	c.RegisterHandler(EventTypePaymentRecorded, func(_ context.Context, e PaymentRecordedEvent) error {
		handled++
		if e.TransactionID == "TXN_FAIL" {
			return errors.New("ledger offline")
		}
		return nil
	})

	noType := eventMessage(t, "", PaymentRecordedEvent{})
	noType.Offset = 1
	failing := eventMessage(t, EventTypePaymentRecorded, PaymentRecordedEvent{TransactionID: "TXN_FAIL"})
	failing.Offset = 2
	good := eventMessage(t, EventTypePaymentRecorded, PaymentRecordedEvent{TransactionID: "TXN_OK"})
	good.Offset = 3

	stream := claimStream{messages: make(chan *sarama.ConsumerMessage, 3)}
	stream.messages <- noType
	stream.messages <- failing
	stream.messages <- good
	close(stream.messages)

	session := &claimSession{}
	h := &consumerGroupHandler{consumer: c}
	require.NoError(t, h.ConsumeClaim(session, stream))

	assert.Equal(t, []int64{1, 2, 3}, session.marked)
	assert.Equal(t, 2, handled)
	out := buf.String()
	assert.Contains(t, out, "Skipping Kafka message")
	assert.Contains(t, out, "no event_type header")
	assert.Contains(t, out, "ledger offline")
}

func TestReconcileOnPayment(t *testing.T) {
	ctx := context.Background()
	db := payrolltest.NewDB(t)
	requests := repository.NewGormRequestRepository(db)
	payments := repository.NewGormPaymentRepository(db)

	req := &domain.PayrollRequest{EmployeeEmail: "alice@co.com", EmployeeName: "Alice", Salary: 2500, Month: 3, Year: 2024, RequestedBy: "hr@co.com"}
	require.NoError(t, requests.Create(ctx, req))
	payment := samplePayment()
	payment.ID = ""
	payment.RequestID = req.ID
	require.NoError(t, payments.Record(ctx, payment))

	handler := ReconcileOnPayment(command.NewReconcileRequestsHandler(requests, payments))
	require.NoError(t, handler(ctx, PaymentRecordedEvent{EmployeeEmail: "alice@co.com", Month: 3, Year: 2024}))

	stored, err := requests.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, stored.Status)
	assert.Equal(t, "STRIPE_1_ABC", stored.TransactionID)
	assert.Equal(t, domain.ActorReconciliation, stored.CompletedBy)
}
