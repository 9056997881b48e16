// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/wayne-tui/internal/ui/views"
)

const usageMarkdown = `# wayne

Cliente de terminal da Wayne Security API.

## Uso

    wayne [flags globais] <comando> [argumentos]

Sem comando, abre o painel interativo (tui).

## Comandos

| Comando | Descrição |
|---|---|
| ` + "`tui`" + ` | painel interativo (padrão) |
| ` + "`login [usuário]`" + ` | inicia uma sessão; a senha é lida sem eco |
| ` + "`logout`" + ` | encerra a sessão salva |
| ` + "`whoami`" + ` | mostra o usuário, o perfil e as permissões |
| ` + "`resources list`" + ` | lista os recursos |
| ` + "`resources add --tipo T --nome N [--status S] [--local L]`" + ` | cadastra um recurso |
| ` + "`resources rm <id> [--yes]`" + ` | remove um recurso |
| ` + "`incidents list`" + ` | lista os incidentes |
| ` + "`incidents add --titulo T [--gravidade G] [--status S] [--descricao D] [--recurso ID]`" + ` | registra um incidente |
| ` + "`incidents rm <id> [--yes]`" + ` | remove um incidente |
| ` + "`stats`" + ` | indicadores do painel |
| ` + "`health`" + ` | estado do servidor |
| ` + "`register`" + ` | cria uma conta (` + "`--username --nome --email --role [--cargo]`" + `) |
| ` + "`setup-admin`" + ` | cria a conta admin inicial do servidor |
| ` + "`roles [--can <ação>] [--role <perfil>]`" + ` | tabela de permissões por perfil, ou se o perfil pode uma ação |
| ` + "`config [show]`" + ` | configuração em uso |
| ` + "`config path`" + ` | caminho do arquivo de configuração |
| ` + "`config init [--yes]`" + ` | grava o arquivo com os valores padrão |
| ` + "`config set <chave> <valor>`" + ` | altera uma chave do arquivo (ex.: ` + "`ui.theme light`" + `, ` + "`users.lucius gerente`" + `) |
| ` + "`version`" + ` | versão do programa |
| ` + "`help [--md]`" + ` | esta ajuda |

## Flags globais

| Flag | Descrição |
|---|---|
| ` + "`--json`" + ` | saída JSON ` + "`{success, data, error, timestamp, command}`" + ` |
| ` + "`--config <arquivo>`" + ` | arquivo de configuração (padrão ` + "`~/.wayne/config.toml`" + `) |
| ` + "`--api <url>`" + ` | URL da API, sobrepõe a configuração |
| ` + "`-v, --verbose`" + ` | log de depuração |

## Valores aceitos

- Tipo de recurso: Equipamento, Veículo, Dispositivo
- Status de recurso: Ativo, Inativo, Manutenção
- Gravidade: Baixa, Média, Alta, Crítica
- Status de incidente: Aberto, Em Andamento, Resolvido

Acentos e maiúsculas são opcionais: ` + "`--gravidade media`" + ` vale Média.
`

// UsageMarkdown returns the help text as markdown.
func UsageMarkdown() string {
	return usageMarkdown
}

func (r *Runner) runHelp(_ context.Context, p *ArgParser) (interface{}, error) {
	if r.Args.JSON {
		return map[string]string{"markdown": usageMarkdown, "version": Version}, nil
	}
	if p.BoolFlag("md") || !IsWriterTTY(r.Out) {
		fmt.Fprint(r.Out, usageMarkdown)
		return nil, nil
	}

	style := views.MarkdownDark
	if !lipgloss.HasDarkBackground() {
		style = views.MarkdownLight
	}
	out, err := views.RenderMarkdown(usageMarkdown, GetTerminalWidth()-2, style)
	if err != nil {
		r.Log.WithError(err).Debug("help rendered as plain markdown")
		out = usageMarkdown
	}
	fmt.Fprint(r.Out, out)
	return nil, nil
}
