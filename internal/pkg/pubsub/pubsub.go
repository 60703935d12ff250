package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelNotifications = "blog_notifications"
)

// 通知事件类型
const (
	EventNewComment = "new_comment"
	EventNewReply   = "new_reply"
	EventNewFollow  = "new_follow"
)

// Notification 通知消息
type Notification struct {
	Type         string `json:"type"`
	UserID       int64  `json:"user_id"`
	ActorName    string `json:"actor_name"`
	ArticleSlug  string `json:"article_slug,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	CommentID    int64  `json:"comment_id,omitempty"`
	Message      string `json:"message,omitempty"`
}

// 事件对应的消息模板
var eventMessages = map[string]string{
	EventNewComment: "评论了你的文章",
	EventNewReply:   "回复了你的评论",
	EventNewFollow:  "关注了你",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish 发布通知消息
func (p *Publisher) Publish(ctx context.Context, msg *Notification) error {
	// 自动填充默认消息
	if msg.Message == "" {
		if message, ok := eventMessages[msg.Type]; ok {
			msg.Message = msg.ActorName + " " + message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	return p.client.Publish(ctx, ChannelNotifications, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅通知消息
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Notification)) error {
	pubsub := s.client.Subscribe(ctx, ChannelNotifications)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var notification Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				continue // 忽略解析错误
			}

			handler(&notification)
		}
	}
}
