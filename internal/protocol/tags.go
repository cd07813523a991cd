package protocol

// Tag identifies an inbound command.
type Tag string

const (
	TagInitializeOptions   Tag = "initializeOptionsPage"
	TagGetFiltersMetadata  Tag = "getFiltersMetadata"
	TagChangeSetting       Tag = "changeUserSetting"
	TagEnableFilter        Tag = "addAndEnableFilter"
	TagDisableFilter       Tag = "disableFilter"
	TagEnableFilterGroup   Tag = "addAndEnableFiltersByGroupId"
	TagDisableFilterGroup  Tag = "disableAntiBannerFiltersByGroupId"
	TagGetWhitelist        Tag = "getWhiteListDomains"
	TagSaveWhitelist       Tag = "saveWhiteListDomains"
	TagChangeWhitelistMode Tag = "changeDefaultWhiteListMode"
	TagGetUserRules        Tag = "getUserRules"
	TagSaveUserRules       Tag = "saveUserRules"
)

// ReplyKind is the reply discipline of a command.
type ReplyKind int

const (
	// ReplyNone commands are fire-and-forget.
	ReplyNone ReplyKind = iota
	// ReplySync commands answer before dispatch returns.
	ReplySync
	// ReplyAsync commands answer later with a separate response frame.
	ReplyAsync
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyNone:
		return "none"
	case ReplySync:
		return "sync"
	case ReplyAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Channel names used on the UI connection.
const (
	ChannelInbound                 = "renderer-to-main"
	ChannelPush                    = "main-to-renderer"
	ChannelInitializeOptionsResult = "initializeOptionsPageResponse"
	ChannelFiltersMetadataResult   = "getFiltersMetadataResponse"
	ChannelWhitelistResult         = "getWhiteListDomainsResponse"
	ChannelUserRulesResult         = "getUserRulesResponse"
)

type tagInfo struct {
	reply   ReplyKind
	channel string
}

var tagTable = map[Tag]tagInfo{
	TagInitializeOptions:   {ReplySync, ChannelInitializeOptionsResult},
	TagGetFiltersMetadata:  {ReplySync, ChannelFiltersMetadataResult},
	TagChangeSetting:       {ReplyNone, ""},
	TagEnableFilter:        {ReplyNone, ""},
	TagDisableFilter:       {ReplyNone, ""},
	TagEnableFilterGroup:   {ReplyNone, ""},
	TagDisableFilterGroup:  {ReplyNone, ""},
	TagGetWhitelist:        {ReplySync, ChannelWhitelistResult},
	TagSaveWhitelist:       {ReplyNone, ""},
	TagChangeWhitelistMode: {ReplyNone, ""},
	TagGetUserRules:        {ReplyAsync, ChannelUserRulesResult},
	TagSaveUserRules:       {ReplyNone, ""},
}

// Tags returns every known command tag in a stable order.
func Tags() []Tag {
	return []Tag{
		TagInitializeOptions,
		TagGetFiltersMetadata,
		TagChangeSetting,
		TagEnableFilter,
		TagDisableFilter,
		TagEnableFilterGroup,
		TagDisableFilterGroup,
		TagGetWhitelist,
		TagSaveWhitelist,
		TagChangeWhitelistMode,
		TagGetUserRules,
		TagSaveUserRules,
	}
}

// Known reports whether t belongs to the closed tag set.
func (t Tag) Known() bool {
	_, ok := tagTable[t]
	return ok
}

// Reply returns the reply discipline of t. Unknown tags report ReplyNone.
func (t Tag) Reply() ReplyKind {
	return tagTable[t].reply
}

// ResponseChannel returns the outbound channel carrying t's reply, or "" for
// fire-and-forget and unknown tags.
func (t Tag) ResponseChannel() string {
	return tagTable[t].channel
}
