package contract

// Collection names in the document store.
const (
	UsersCollection     = "usuarios"
	ChatsCollection     = "chats"
	MessagesCollection  = "messages"
	PostsCollection     = "post"
	CommentsCollection  = "comentarios"
	BudgetsCollection   = "presupuestos"
	RequestsCollection  = "solicitudes"
	FieldSearchKeywords = "search_keywords"
	FieldStripeAccount  = "stripeAccountId"
)

// Roles that receive new service requests.
const (
	RoleProvider = "Proveedor"
	RoleBoth     = "Ambos"
)

// Budget states that produce a notification. Every other value is ignored.
const (
	BudgetAcceptedByClient = "ACEPTADO_POR_CLIENTE"
	BudgetRejectedByClient = "RECHAZADO_POR_CLIENTE"
	BudgetContractCreated  = "CONTRATO_GENERADO"
)

type FirestoreUser struct {
	ID                string   `firestore:"-"`
	DisplayName       string   `firestore:"display_name"`
	Email             string   `firestore:"email"`
	PhotoURL          string   `firestore:"photo_url"`
	Categories        []string `firestore:"userCategorias"`
	FCMTokens         []string `firestore:"fcmTokens"`
	Followers         []string `firestore:"followers"`
	Country           string   `firestore:"pais"`
	Municipality      string   `firestore:"municipio"`
	Role              string   `firestore:"rol_user"`
	NotificationZones []string `firestore:"zonasDeNotificacion"`
	StripeAccountID   string   `firestore:"stripeAccountId"`
	SearchKeywords    []string `firestore:"search_keywords"`
}

// FirestoreChat is a two-party chat room keyed by the sorted participant ids.
type FirestoreChat struct {
	Participants      []string          `firestore:"participantes"`
	ParticipantNames  map[string]string `firestore:"participantesNombres"`
	ParticipantPhotos map[string]string `firestore:"participantesFotos"`
}

type FirestoreMessage struct {
	SenderID string `firestore:"senderId"`
	Text     string `firestore:"texto"`
}

type FirestorePost struct {
	AuthorID string   `firestore:"authorId"`
	Likes    []string `firestore:"likes"`
}

type FirestoreComment struct {
	UserID string `firestore:"userId"`
}

// FirestoreRequest is a service request ("solicitud").
type FirestoreRequest struct {
	Category     string `firestore:"categoria"`
	Country      string `firestore:"pais"`
	Municipality string `firestore:"municipio"`
	Title        string `firestore:"titulo"`
	UserID       string `firestore:"user_id"`
}

// FirestoreBudget is a provider quote ("presupuesto") for a request.
type FirestoreBudget struct {
	Status     string `firestore:"estado"`
	ProviderID string `firestore:"realizadoPor"`
	ClientID   string `firestore:"userServicio"`
	Title      string `firestore:"tituloPresupuesto"`
	RequestID  string `firestore:"idSolicitud"`
}
