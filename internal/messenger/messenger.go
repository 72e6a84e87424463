package messenger

import (
	"fmt"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

type MessageService interface {
	SendMessage(item Item, body []byte) error
	PollMessages(item Item, messages chan *sqs.Message)
	DeleteMessage(item Item, msg *sqs.Message) error
}

type Messenger struct {
	sqsClient *sqs.SQS
}

type Item string

var (
	SettlementCompleted Item = "settlement.completed"
	AdminChanged        Item = "admin.changed"
)

func (i Item) queue() string {
	return fmt.Sprintf("%s_%s_%s", config.Get().Network, config.Get().Index, i)
}

func NewMessenger() (MessageService, error) {
	cfg := config.Get().Aws

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, err
	}

	return Messenger{sqs.New(sess)}, nil
}

func (m Messenger) SendMessage(item Item, body []byte) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.sqsClient.SendMessage(&sqs.SendMessageInput{
		MessageBody: aws.String(string(body)),
		QueueUrl:    queueUrl,
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to send message")
		return err
	}

	zap.L().With(zap.String("queue", item.queue())).Debug("[Queue] Published message")

	return nil
}

func (m Messenger) PollMessages(item Item, messages chan *sqs.Message) {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to resolve queue")
		return
	}

	for {
		output, err := m.sqsClient.ReceiveMessage(&sqs.ReceiveMessageInput{
			QueueUrl:            queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(15),
		})
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", item.queue())).Error("[Queue] Failed to receive messages")
			continue
		}

		for _, message := range output.Messages {
			messages <- message
		}
	}
}

func (m Messenger) DeleteMessage(item Item, msg *sqs.Message) error {
	queueUrl, err := m.queueUrl(item)
	if err != nil {
		return err
	}

	_, err = m.sqsClient.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: msg.ReceiptHandle,
	})

	return err
}

func (m Messenger) queueUrl(item Item) (*string, error) {
	result, err := m.sqsClient.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(item.queue()),
	})
	if err != nil {
		return nil, err
	}

	return result.QueueUrl, nil
}
