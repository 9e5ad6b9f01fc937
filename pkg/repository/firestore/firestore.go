package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

const (
	agentsCollection    = "agents"
	documentsCollection = "documents"
	chatsCollection     = "chats"
	messagesCollection  = "messages"
)

type Firestore struct {
	client   *firestore.Client
	agent    *agentRepository
	document *documentRepository
	chat     *chatRepository
	message  *messageRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections, mainly for tests sharing a database
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.agent.collectionPrefix = prefix
		f.document.collectionPrefix = prefix
		f.chat.collectionPrefix = prefix
		f.message.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := NewClient(ctx, projectID, databaseID)
	if err != nil {
		return nil, err
	}

	f := &Firestore{
		client:   client,
		agent:    newAgentRepository(client),
		document: newDocumentRepository(client),
		chat:     newChatRepository(client),
		message:  newMessageRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// NewClient opens a Firestore client for the given database. An empty
// databaseID selects the default database.
func NewClient(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	var (
		client *firestore.Client
		err    error
	)
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}
	return client, nil
}

func (f *Firestore) Agent() interfaces.AgentRepository {
	return f.agent
}

func (f *Firestore) Document() interfaces.DocumentRepository {
	return f.document
}

func (f *Firestore) Chat() interfaces.ChatRepository {
	return f.chat
}

func (f *Firestore) Message() interfaces.MessageRepository {
	return f.message
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}
