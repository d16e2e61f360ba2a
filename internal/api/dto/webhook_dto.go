package dto

// YCloudEvent is the envelope the provider posts to the webhook endpoint.
// Exactly one of the payload fields is set depending on Type.
type YCloudEvent struct {
	ID                     string                `json:"id"`
	Type                   string                `json:"type"`
	WhatsAppInboundMessage *YCloudInboundMessage `json:"whatsappInboundMessage"`
	WhatsAppMessage        *YCloudMessageStatus  `json:"whatsappMessage"`
}

// YCloudInboundMessage is a customer message received by the provider.
type YCloudInboundMessage struct {
	ID              string                 `json:"id"`
	WAMID           string                 `json:"wamid"`
	From            string                 `json:"from"`
	To              string                 `json:"to"`
	Type            string                 `json:"type"`
	Text            *YCloudText            `json:"text"`
	Image           *YCloudMedia           `json:"image"`
	Video           *YCloudMedia           `json:"video"`
	Audio           *YCloudMedia           `json:"audio"`
	Document        *YCloudMedia           `json:"document"`
	Sticker         *YCloudMedia           `json:"sticker"`
	CustomerProfile *YCloudCustomerProfile `json:"customerProfile"`
}

// YCloudText carries a plain text body.
type YCloudText struct {
	Body string `json:"body"`
}

// YCloudMedia carries a downloadable attachment.
type YCloudMedia struct {
	Link     string `json:"link"`
	Caption  string `json:"caption"`
	Filename string `json:"filename"`
}

// YCloudCustomerProfile carries the sender's display name.
type YCloudCustomerProfile struct {
	Name string `json:"name"`
}

// YCloudMessageStatus is a delivery status callback for a sent message.
type YCloudMessageStatus struct {
	ID     string `json:"id"`
	WAMID  string `json:"wamid"`
	Status string `json:"status"`
}
