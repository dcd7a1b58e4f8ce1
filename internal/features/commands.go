package features

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/ncmbot/internal/database"
	musiclisteners "github.com/hxnx/ncmbot/internal/features/music/listeners"
	shared "github.com/hxnx/ncmbot/internal/features/shared"
	"github.com/hxnx/ncmbot/internal/picker"
)

const commandSearchTimeout = 60 * time.Second

type Deps struct {
	Picker   *picker.Picker
	Channels *database.ChannelRepository
}

var deps Deps

func Configure(d Deps) {
	deps = d
}

var CommandList = []*discordgo.ApplicationCommand{
	{
		Name:        "핑",
		Description: "봇 상태를 확인합니다",
	},
	{
		Name:        "노래",
		Description: "노래 검색/설정 명령어",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "검색",
				Description: "노래를 검색해 번호로 고릅니다",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "검색어",
						Description: "곡명 또는 아티스트",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "음질",
				Description: "이 채널의 음질/검색 곡수를 설정합니다",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "품질",
						Description: "선호 음질",
						Required:    true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "표준", Value: "standard"},
							{Name: "높음", Value: "higher"},
							{Name: "매우 높음", Value: "exhigh"},
							{Name: "무손실", Value: "lossless"},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "곡수",
						Description: "검색 결과 곡 수 (1-10)",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "초기화",
				Description: "이 채널의 설정을 기본값으로 되돌립니다",
			},
		},
	},
}

var commandHandlers = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
	"핑":  handlePing,
	"노래": handleSongGroupCommand,
}

func handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	shared.RespondEphemeral(s, i, fmt.Sprintf("퐁! 게이트웨이 지연: %dms", s.HeartbeatLatency().Milliseconds()))
}

func handleSongGroupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	sub := getSubcommandOption(data)
	if sub == nil {
		shared.RespondEphemeral(s, i, "사용할 명령을 선택해 주세요.")
		return
	}

	switch sub.Name {
	case "검색":
		handleSearchSubcommand(s, i, sub.Options)
	case "음질":
		handleQualitySubcommand(s, i, sub.Options)
	case "초기화":
		handleResetSubcommand(s, i)
	default:
		shared.RespondEphemeral(s, i, "지원하지 않는 노래 명령입니다.")
	}
}

func handleSearchSubcommand(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if deps.Picker == nil {
		shared.RespondEphemeral(s, i, "봇이 아직 준비되지 않았습니다.")
		return
	}

	userID := shared.GetInteractionUserID(i)
	if userID == "" {
		shared.RespondEphemeral(s, i, "사용자 정보를 확인할 수 없습니다.")
		return
	}

	keyword := shared.GetOptionString(options, "검색어")
	shared.RespondEphemeral(s, i, fmt.Sprintf("「%s」 검색을 시작했어요.", keyword))

	ev := picker.Event{
		ConversationID: i.ChannelID,
		SenderID:       userID,
		Text:           keyword,
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandSearchTimeout)
	defer cancel()

	deps.Picker.HandleKeyword(ctx, ev, keyword)
}

func handleQualitySubcommand(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	quality := shared.GetOptionString(options, "품질")
	limit := shared.GetOptionInt(options, "곡수")
	if limit < 0 || limit > 10 {
		shared.RespondEphemeral(s, i, "곡수는 1에서 10 사이여야 합니다.")
		return
	}

	err := deps.Channels.UpsertSettings(i.ChannelID, database.ChannelSettings{
		Quality:     quality,
		SearchLimit: limit,
	})
	if err != nil {
		log.Printf("failed to save channel settings: %v", err)
		shared.RespondEphemeral(s, i, "설정 저장에 실패했습니다.")
		return
	}

	shared.RespondEphemeral(s, i, fmt.Sprintf("이 채널의 음질을 %s(으)로 설정했습니다.", quality))
}

func handleResetSubcommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := deps.Channels.DeleteSettings(i.ChannelID); err != nil {
		log.Printf("failed to reset channel settings: %v", err)
		shared.RespondEphemeral(s, i, "설정 초기화에 실패했습니다.")
		return
	}

	shared.RespondEphemeral(s, i, "이 채널의 설정을 기본값으로 되돌렸습니다.")
}

func getSubcommandOption(data discordgo.ApplicationCommandInteractionData) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionSubCommand {
			return opt
		}
	}
	return nil
}

func RegisterCommands(s *discordgo.Session, appID string, guildID string) ([]*discordgo.ApplicationCommand, error) {
	scope := "global"
	if guildID != "" {
		scope = fmt.Sprintf("guild:%s", guildID)
	}

	log.Printf("Registering %d commands (%s)", len(CommandList), scope)

	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, CommandList)
	if err != nil {
		return nil, fmt.Errorf("cannot bulk overwrite commands: %w", err)
	}
	return cmds, nil
}

func AddHandlers(s *discordgo.Session, messageHandler *musiclisteners.Handler) {
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		messageHandler.HandleMessage(s, m)
	})

	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		data := i.ApplicationCommandData()
		if handler, ok := commandHandlers[data.Name]; ok {
			handler(s, i)
		}
	})
}
