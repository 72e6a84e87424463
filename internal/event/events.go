package event

type Type string

const (
	ItemListedEvent      Type = "ItemListedEvent"
	ItemDelistedEvent    Type = "ItemDelistedEvent"
	ItemSoldEvent        Type = "ItemSoldEvent"
	AuctionCreatedEvent  Type = "AuctionCreatedEvent"
	AuctionCanceledEvent Type = "AuctionCanceledEvent"
	BidPlacedEvent       Type = "BidPlacedEvent"
	AuctionEndedEvent    Type = "AuctionEndedEvent"
	FeesChangedEvent     Type = "FeesChangedEvent"
	ActorBannedEvent     Type = "ActorBannedEvent"
	ActorUnbannedEvent   Type = "ActorUnbannedEvent"
	WithdrawalEvent      Type = "WithdrawalEvent"
	FundsReceivedEvent   Type = "FundsReceivedEvent"
)
